package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

type fakeInvoker struct {
	stream RawEventStream
	err    error

	gotVariant      Variant
	gotInstruction  string
	gotConversation []Message
}

func (f *fakeInvoker) Invoke(_ context.Context, variant Variant, instruction string, conversation []Message, _ SamplingParams) (RawEventStream, error) {
	f.gotVariant = variant
	f.gotInstruction = instruction
	f.gotConversation = conversation
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func newTestService(repo *fakeHistoryRepo, invoker *fakeInvoker) (*Service, *HistoryStore) {
	store := NewHistoryStore(newFakeCache(), repo, time.Hour, zerolog.Nop())
	return NewService(store, invoker, zerolog.Nop()), store
}

func TestStreamTurnSuccessPersistsExchange(t *testing.T) {
	repo := newFakeHistoryRepo()
	repo.items["u1|c1"] = &History{ConversationID: "c1", UserID: "u1", Messages: []Message{
		userTurn("earlier question"),
		{Role: RoleAssistant, Content: TextContent("earlier answer")},
	}}

	invoker := &fakeInvoker{stream: newFakeEventStream(
		`{"generation":"Hi "}`,
		`{"generation":"there"}`,
	)}
	svc, store := newTestService(repo, invoker)

	var fragments []string
	history, err := svc.StreamTurn(context.Background(), TurnRequest{
		UserID:         "u1",
		ConversationID: "c1",
		Messages:       []Message{userTurn("new question")},
		Variant:        VariantDaisii,
		Params:         DefaultSamplingParams(),
	}, func(fragment string) error {
		fragments = append(fragments, fragment)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Join(fragments, "") != "Hi there" {
		t.Fatalf("unexpected streamed fragments: %v", fragments)
	}

	// prior exchange + user turn + assistant turn
	if len(history.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history.Messages))
	}
	last := history.Messages[3]
	if last.Role != RoleAssistant || last.Content.PlainText() != "Hi there" {
		t.Fatalf("unexpected final message: %+v", last)
	}

	// the model saw the stored context plus the new turn
	if len(invoker.gotConversation) != 3 {
		t.Fatalf("expected 3 messages sent upstream, got %d", len(invoker.gotConversation))
	}
	if invoker.gotInstruction == "" {
		t.Fatal("expected a system instruction")
	}

	store.Wait()
	if got := repo.items["u1|c1"]; len(got.Messages) != 4 {
		t.Fatalf("expected persisted exchange, got %d messages", len(got.Messages))
	}
}

func TestStreamTurnInvokeFailureIsUpstream(t *testing.T) {
	repo := newFakeHistoryRepo()
	invoker := &fakeInvoker{err: platformerrors.NewError(context.Background(),
		platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUpstream, "model invocation rejected", nil)}
	svc, store := newTestService(repo, invoker)

	_, err := svc.StreamTurn(context.Background(), TurnRequest{
		UserID:         "u1",
		ConversationID: "c1",
		Messages:       []Message{userTurn("hi")},
		Variant:        VariantClaude,
		Params:         DefaultSamplingParams(),
	}, func(string) error { return nil })

	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	store.Wait()
	if repo.puts != 0 {
		t.Fatalf("failed invocation must not persist, got %d writes", repo.puts)
	}
}

func TestStreamTurnDecodeFailureDoesNotPersist(t *testing.T) {
	repo := newFakeHistoryRepo()
	invoker := &fakeInvoker{stream: newFakeEventStream(
		`{"generation":"partial "}`,
		`{not json`,
	)}
	svc, store := newTestService(repo, invoker)

	_, err := svc.StreamTurn(context.Background(), TurnRequest{
		UserID:         "u1",
		ConversationID: "c1",
		Messages:       []Message{userTurn("hi")},
		Variant:        VariantDaisii,
		Params:         DefaultSamplingParams(),
	}, func(string) error { return nil })

	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeStreamDecode) {
		t.Fatalf("expected stream decode error, got %v", err)
	}
	store.Wait()
	if repo.puts != 0 {
		t.Fatalf("aborted stream must not persist, got %d writes", repo.puts)
	}
}

func TestStreamTurnSinkFailureAbortsWithoutPersisting(t *testing.T) {
	repo := newFakeHistoryRepo()
	invoker := &fakeInvoker{stream: newFakeEventStream(
		`{"generation":"one"}`,
		`{"generation":"two"}`,
		`{"generation":"three"}`,
	)}
	svc, store := newTestService(repo, invoker)

	calls := 0
	_, err := svc.StreamTurn(context.Background(), TurnRequest{
		UserID:         "u1",
		ConversationID: "c1",
		Messages:       []Message{userTurn("hi")},
		Variant:        VariantDaisii,
		Params:         DefaultSamplingParams(),
	}, func(string) error {
		calls++
		if calls > 1 {
			return errors.New("client went away")
		}
		return nil
	})

	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	store.Wait()
	if repo.puts != 0 {
		t.Fatalf("aborted turn must not persist, got %d writes", repo.puts)
	}
}

func TestStreamTurnPersistenceFailureDoesNotFailDeliveredTurn(t *testing.T) {
	repo := newFakeHistoryRepo()
	repo.putErr = errors.New("table gone")
	invoker := &fakeInvoker{stream: newFakeEventStream(`{"generation":"done"}`)}
	svc, store := newTestService(repo, invoker)

	history, err := svc.StreamTurn(context.Background(), TurnRequest{
		UserID:         "u1",
		ConversationID: "c1",
		Messages:       []Message{userTurn("hi")},
		Variant:        VariantDaisii,
		Params:         DefaultSamplingParams(),
	}, func(string) error { return nil })
	if err != nil {
		t.Fatalf("delivered turn must not fail on persistence, got %v", err)
	}
	if len(history.Messages) != 2 {
		t.Fatalf("expected full exchange in response, got %d messages", len(history.Messages))
	}
	store.Wait()
}
