// Package chathandler exposes the conversation endpoints, including the
// streamed chat turn.
package chathandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Phicks-debug/daisii/internal/domain/chat"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/middlewares"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/requests/chatreq"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/responses"
	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

const streamContentType = "text/markdown; charset=utf-8"

type ChatHandler struct {
	chats  *chat.Service
	logger zerolog.Logger
}

func NewChatHandler(chats *chat.Service, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, logger: logger}
}

// Chat runs one conversation turn and streams the response body as it is
// generated. Errors after the first written fragment cannot change the
// status line; the connection is cut instead.
func (h *ChatHandler) Chat(c *gin.Context) {
	subject, ok := middlewares.SubjectFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "unauthorized")
		return
	}
	conversationID := c.Param("conversation_id")

	var req chatreq.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "malformed chat request")
		return
	}
	if len(req.Messages) == 0 {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "messages must not be empty")
		return
	}

	variant, err := chat.ParseVariant(req.Model)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error())
		return
	}

	wrote := false
	sink := func(fragment string) error {
		if err := c.Request.Context().Err(); err != nil {
			return err
		}
		if !wrote {
			c.Header("Content-Type", streamContentType)
			c.Status(http.StatusOK)
			wrote = true
		}
		if _, err := c.Writer.WriteString(fragment); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	_, err = h.chats.StreamTurn(c.Request.Context(), chat.TurnRequest{
		UserID:         subject,
		ConversationID: conversationID,
		Messages:       req.Messages,
		Variant:        variant,
		Params:         req.Params(),
	}, sink)
	if err != nil {
		if !wrote {
			responses.HandleError(c, err, "chat turn failed")
			return
		}
		// status line already committed mid-stream: kill the connection
		// so the chunked body ends without its completion marker and the
		// client sees truncation, not a complete response
		h.logger.Error().Err(err).
			Str("conversation_id", conversationID).
			Msg("chat stream failed after partial delivery")
		if conn, _, hijackErr := c.Writer.Hijack(); hijackErr == nil {
			conn.Close()
		}
		c.Abort()
		return
	}

	if !wrote {
		// structurally complete stream with zero text fragments
		c.Data(http.StatusOK, streamContentType, nil)
	}
}

// GetHistory returns the stored conversation, empty when none exists.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	subject, ok := middlewares.SubjectFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "unauthorized")
		return
	}
	conversationID := c.Param("conversation_id")

	history, err := h.chats.History(c.Request.Context(), subject, conversationID)
	if err != nil {
		responses.HandleError(c, err, "failed to load chat history")
		return
	}

	c.JSON(http.StatusOK, history)
}

// CreateConversation idempotently provisions durable storage.
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	if _, ok := middlewares.SubjectFromContext(c); !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "unauthorized")
		return
	}
	conversationID := c.Param("conversation_id")

	if err := h.chats.Provision(c.Request.Context()); err != nil {
		responses.HandleError(c, err, "failed to provision conversation storage")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"conversation_id": conversationID,
	})
}
