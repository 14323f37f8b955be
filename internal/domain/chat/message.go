// Package chat provides the conversation domain: messages, model
// variants, stream normalization and the cache-aside history store.
package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ContentType identifies the kind of a structured content block.
type ContentType string

const (
	ContentTypeText       ContentType = "text"
	ContentTypeImage      ContentType = "image"
	ContentTypeToolUse    ContentType = "tool_use"
	ContentTypeToolResult ContentType = "tool_result"
)

// ImageSource carries base64 image data for multi-modal content.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ContentBlock is one typed element of a structured message body.
type ContentBlock struct {
	Type      ContentType    `json:"type"`
	Text      string         `json:"text,omitempty"`
	Source    *ImageSource   `json:"source,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
}

// Content is either plain text or a sequence of typed blocks. The wire
// representation mirrors the provider shape: a JSON string for plain
// text, a JSON array for blocks.
type Content struct {
	Text   string
	Blocks []ContentBlock
}

// TextContent wraps plain text into a Content value.
func TextContent(text string) Content {
	return Content{Text: text}
}

// IsStructured reports whether the content carries typed blocks.
func (c Content) IsStructured() bool {
	return len(c.Blocks) > 0
}

// PlainText renders the content as plain text. Structured blocks
// contribute their text parts only; images and tool payloads carry no
// flattenable text.
func (c Content) PlainText() string {
	if !c.IsStructured() {
		return c.Text
	}
	var b strings.Builder
	for _, block := range c.Blocks {
		if block.Type == ContentTypeText {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// MarshalJSON implements json.Marshaler.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsStructured() {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty message content")
	}
	if trimmed[0] == '[' {
		c.Text = ""
		return json.Unmarshal(trimmed, &c.Blocks)
	}
	c.Blocks = nil
	return json.Unmarshal(trimmed, &c.Text)
}

// Message is one immutable conversation entry.
type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// History is the ordered message sequence of one conversation. Messages
// are append-only within a turn; the whole sequence is rewritten on save.
type History struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Messages       []Message `json:"messages"`
}

// EmptyHistory returns a valid zero-message history for the given key.
func EmptyHistory(userID, conversationID string) *History {
	return &History{
		ConversationID: conversationID,
		UserID:         userID,
		Messages:       []Message{},
	}
}
