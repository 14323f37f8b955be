// Package chatreq defines the wire shape of a chat turn request.
package chatreq

import (
	"github.com/Phicks-debug/daisii/internal/domain/chat"
)

// ChatRequest is the JSON body of a streamed turn. Sampling fields are
// pointers so an absent field falls back to the gateway default.
type ChatRequest struct {
	Messages    []chat.Message `json:"messages"`
	Model       string         `json:"model"`
	MaxTokens   *int           `json:"max_tokens,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	TopP        *float64       `json:"top_p,omitempty"`
	TopK        *int           `json:"top_k,omitempty"`
}

// Params merges the request overrides over the defaults.
func (r *ChatRequest) Params() chat.SamplingParams {
	params := chat.DefaultSamplingParams()
	if r.MaxTokens != nil {
		params.MaxTokens = *r.MaxTokens
	}
	if r.Temperature != nil {
		params.Temperature = *r.Temperature
	}
	if r.TopP != nil {
		params.TopP = *r.TopP
	}
	if r.TopK != nil {
		params.TopK = *r.TopK
	}
	return params
}
