package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

// fragmentBuffer bounds the hand-off between the normalizer and the
// consumer so the normalizer never runs far ahead of the client.
const fragmentBuffer = 16

// TokenStream is the normalized, forward-only fragment sequence produced
// from one provider stream. It is finite, not restartable and consumed
// exactly once. The full response is available only after the fragment
// channel has been drained.
type TokenStream struct {
	fragments chan string
	done      chan struct{}

	// written by the normalizer goroutine, read after done closes
	err  error
	full strings.Builder
}

// Fragments returns the bounded fragment channel. The channel closes when
// the provider stream is exhausted or fails.
func (ts *TokenStream) Fragments() <-chan string {
	return ts.fragments
}

// Err reports the terminal stream error, if any. Valid only after the
// fragment channel has closed.
func (ts *TokenStream) Err() error {
	select {
	case <-ts.done:
		return ts.err
	default:
		return platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "token stream err read before exhaustion", nil)
	}
}

// FullResponse returns the concatenation of all emitted fragments in
// emission order. It fails if the stream has not been exhausted or if it
// terminated with an error; a partial accumulation is never exposed.
func (ts *TokenStream) FullResponse() (string, error) {
	select {
	case <-ts.done:
	default:
		return "", platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal, "full response requested before stream exhaustion", nil)
	}
	if ts.err != nil {
		return "", ts.err
	}
	return ts.full.String(), nil
}

// Normalize converts a provider's raw event stream into a TokenStream
// using the parsing rule of the given variant. Cancelling ctx releases
// the underlying stream and terminates normalization.
func Normalize(ctx context.Context, stream RawEventStream, variant Variant) *TokenStream {
	ts := &TokenStream{
		fragments: make(chan string, fragmentBuffer),
		done:      make(chan struct{}),
	}
	go ts.run(ctx, stream, variant)
	return ts
}

func (ts *TokenStream) run(ctx context.Context, stream RawEventStream, variant Variant) {
	// done must close before fragments so a consumer that drains the
	// channel can read Err/FullResponse immediately
	defer close(ts.fragments)
	defer close(ts.done)
	defer stream.Close()

	for payload := range stream.Events() {
		fragment, ok, err := decodeFragment(payload, variant)
		if err != nil {
			ts.err = platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeStreamDecode, "malformed provider event", err)
			return
		}
		if !ok {
			continue
		}

		ts.full.WriteString(fragment)

		select {
		case ts.fragments <- fragment:
		case <-ctx.Done():
			ts.err = platformerrors.NewError(ctx, platformerrors.LayerDomain,
				platformerrors.ErrorTypeInternal, "stream consumer gone", ctx.Err())
			return
		}
	}

	if err := stream.Err(); err != nil {
		ts.err = platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "provider stream failed")
	}
}

// decodeFragment applies the per-variant parsing rule to one event
// record. ok is false for records that legitimately carry no text.
func decodeFragment(payload []byte, variant Variant) (string, bool, error) {
	switch variant {
	case VariantClaude:
		var record struct {
			Type  string `json:"type"`
			Delta struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"delta"`
		}
		if err := json.Unmarshal(payload, &record); err != nil {
			return "", false, err
		}
		// block-start/stop and message-stop events carry no text
		if record.Type != "content_block_delta" || record.Delta.Type != "text_delta" {
			return "", false, nil
		}
		return record.Delta.Text, true, nil

	case VariantDaisii:
		var record struct {
			Generation *string `json:"generation"`
		}
		if err := json.Unmarshal(payload, &record); err != nil {
			return "", false, err
		}
		if record.Generation == nil {
			return "", false, fmt.Errorf("event record missing generation field")
		}
		return *record.Generation, true, nil

	case VariantTitan:
		var record struct {
			OutputText *string `json:"outputText"`
		}
		if err := json.Unmarshal(payload, &record); err != nil {
			return "", false, err
		}
		if record.OutputText == nil {
			return "", false, fmt.Errorf("event record missing outputText field")
		}
		return *record.OutputText, true, nil

	default:
		return "", false, fmt.Errorf("unknown model variant %q", variant)
	}
}
