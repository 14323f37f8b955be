package chat

import (
	"context"
	"fmt"
)

// Variant is the closed set of supported generative-model backends.
// Adding a backend means adding a case here, in the adapter request
// shaping and in the stream normalizer, in lockstep.
type Variant string

const (
	// VariantClaude is the conversational-turn model: structured
	// role/content turns plus a separate system field.
	VariantClaude Variant = "claude"
	// VariantDaisii is the completion-style model: the conversation and
	// instruction are pre-flattened into one marked-up prompt string.
	VariantDaisii Variant = "daisii"
	// VariantTitan is the single-text-block model: instruction and
	// conversation collapse into one text block with no turn structure.
	VariantTitan Variant = "titan"
)

// ParseVariant maps a caller-supplied model identifier to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantClaude, VariantDaisii, VariantTitan:
		return Variant(s), nil
	}
	return "", fmt.Errorf("unknown model %q", s)
}

// SamplingParams tunes one model invocation. TopK is optional and
// ignored by variants that do not support it.
type SamplingParams struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// DefaultSamplingParams returns the gateway defaults for unset fields.
func DefaultSamplingParams() SamplingParams {
	return SamplingParams{
		MaxTokens:   1024,
		Temperature: 0.7,
		TopP:        0.9,
		TopK:        250,
	}
}

// RawEventStream is a provider's event stream reduced to its essentials:
// a forward-only sequence of JSON-encoded records. Err reports the
// terminal transport error, valid only after the Events channel closes.
type RawEventStream interface {
	Events() <-chan []byte
	Err() error
	Close() error
}

// ModelInvoker translates a normalized chat request into one
// provider-specific invocation and exposes the raw event stream.
type ModelInvoker interface {
	Invoke(ctx context.Context, variant Variant, instruction string, conversation []Message, params SamplingParams) (RawEventStream, error)
}
