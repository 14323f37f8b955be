package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

// TurnRequest describes one conversation turn.
type TurnRequest struct {
	UserID         string
	ConversationID string
	Messages       []Message
	Variant        Variant
	Params         SamplingParams
}

// FragmentSink receives fragments as they are produced. Returning an
// error stops the turn; the usual cause is a disconnected client.
type FragmentSink func(fragment string) error

// Service orchestrates one chat turn: load history, invoke the model,
// normalize and forward the stream, persist the completed exchange.
type Service struct {
	store   *HistoryStore
	invoker ModelInvoker
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService constructs a Service with required dependencies.
func NewService(store *HistoryStore, invoker ModelInvoker, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		invoker: invoker,
		logger:  logger,
		now:     time.Now,
	}
}

// History returns the stored history for a conversation, empty when none
// exists.
func (s *Service) History(ctx context.Context, userID, conversationID string) (*History, error) {
	return s.store.Load(ctx, userID, conversationID)
}

// Provision idempotently prepares durable storage for a conversation.
func (s *Service) Provision(ctx context.Context) error {
	return s.store.Provision(ctx)
}

// StreamTurn runs one turn. Fragments are handed to sink in provider
// emission order as they arrive. The exchange is persisted only after a
// structurally complete stream; an aborted or failed stream persists
// nothing. Persistence failure never fails a delivered response.
func (s *Service) StreamTurn(ctx context.Context, req TurnRequest, sink FragmentSink) (*History, error) {
	history, err := s.store.Load(ctx, req.UserID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	conversation := append(history.Messages, req.Messages...)

	instruction := InstructionFor(req.Variant, s.now())
	stream, err := s.invoker.Invoke(ctx, req.Variant, instruction, conversation, req.Params)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "model invocation failed")
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	tokens := Normalize(streamCtx, stream, req.Variant)

	var sinkErr error
	for fragment := range tokens.Fragments() {
		if sinkErr != nil {
			continue // drain after the client is gone
		}
		if err := sink(fragment); err != nil {
			sinkErr = err
			cancel() // release the upstream invocation
		}
	}

	if sinkErr != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "client stopped consuming mid-stream", sinkErr)
	}
	if err := tokens.Err(); err != nil {
		return nil, err
	}

	fullResponse, err := tokens.FullResponse()
	if err != nil {
		return nil, err
	}

	conversation = append(conversation, Message{
		Role:    RoleAssistant,
		Content: TextContent(fullResponse),
	})

	if err := s.store.Save(ctx, req.UserID, req.ConversationID, conversation); err != nil {
		// response already delivered in full; record and move on
		platformerrors.LogError(s.logger, platformerrors.AsError(ctx,
			platformerrors.LayerDomain, err, "history save failed after completed turn"))
	}

	return &History{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Messages:       conversation,
	}, nil
}
