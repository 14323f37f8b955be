package bedrock

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/Phicks-debug/daisii/internal/domain/chat"
	"github.com/Phicks-debug/daisii/internal/infrastructure/logger"
)

// eventStream reduces the SDK's response stream to the domain contract:
// a channel of JSON-encoded chunk payloads plus a terminal error.
type eventStream struct {
	upstream *bedrockruntime.InvokeModelWithResponseStreamEventStream
	events   chan []byte
	closed   chan struct{}
	once     sync.Once
	err      error
}

var _ chat.RawEventStream = (*eventStream)(nil)

func newEventStream(upstream *bedrockruntime.InvokeModelWithResponseStreamEventStream) *eventStream {
	s := &eventStream{
		upstream: upstream,
		events:   make(chan []byte),
		closed:   make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *eventStream) pump() {
	defer close(s.events)

	for event := range s.upstream.Events() {
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok {
			// unknown member types carry no payload
			continue
		}

		select {
		case s.events <- chunk.Value.Bytes:
		case <-s.closed:
			return
		}
	}

	s.err = s.upstream.Err()
}

func (s *eventStream) Events() <-chan []byte {
	return s.events
}

// Err reports the provider-side terminal error, valid after the events
// channel closes.
func (s *eventStream) Err() error {
	return s.err
}

// Close releases the upstream stream. Safe to call more than once.
func (s *eventStream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		if closeErr := s.upstream.Close(); closeErr != nil {
			log := logger.GetLogger()
			log.Warn().Err(closeErr).Msg("unable to close provider event stream")
			err = closeErr
		}
	})
	return err
}
