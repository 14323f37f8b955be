// Package bedrock adapts normalized chat requests to the per-variant
// invocation shapes of the model provider and exposes its event streams.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/Phicks-debug/daisii/internal/domain/chat"
	"github.com/Phicks-debug/daisii/internal/utils/platformerrors"
)

const (
	claudeModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	daisiiModelID = "us.meta.llama3-2-3b-instruct-v1:0"
	titanModelID  = "amazon.titan-text-premier-v1:0"

	anthropicVersion = "bedrock-2023-05-31"
)

// Client invokes streaming model generations. One invocation attempt per
// request; retry policy belongs to a caller layer.
type Client struct {
	runtime *bedrockruntime.Client
}

var _ chat.ModelInvoker = (*Client)(nil)

// New builds a Client for the given region using the default credential
// chain.
func New(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Client{runtime: bedrockruntime.NewFromConfig(cfg)}, nil
}

// NewFromRuntime wraps an existing runtime client.
func NewFromRuntime(runtime *bedrockruntime.Client) *Client {
	return &Client{runtime: runtime}
}

// Invoke serializes the conversation into the variant's request shape and
// starts a streaming invocation. Transport failures and provider
// rejections both surface as upstream invocation errors.
func (c *Client) Invoke(ctx context.Context, variant chat.Variant, instruction string, conversation []chat.Message, params chat.SamplingParams) (chat.RawEventStream, error) {
	body, err := RequestBody(variant, instruction, conversation, params)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal, "serialize model request", err)
	}

	output, err := c.runtime.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(modelID(variant)),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstream, "model invocation rejected", err)
	}

	return newEventStream(output.GetStream()), nil
}

func modelID(variant chat.Variant) string {
	switch variant {
	case chat.VariantDaisii:
		return daisiiModelID
	case chat.VariantTitan:
		return titanModelID
	default:
		return claudeModelID
	}
}

// RequestBody builds the provider request document for one variant.
// Exported so the serialization rules are testable without a live
// provider.
func RequestBody(variant chat.Variant, instruction string, conversation []chat.Message, params chat.SamplingParams) ([]byte, error) {
	switch variant {
	case chat.VariantClaude:
		return claudeBody(instruction, conversation, params)
	case chat.VariantDaisii:
		return daisiiBody(instruction, conversation, params)
	case chat.VariantTitan:
		return titanBody(instruction, conversation, params)
	default:
		return nil, fmt.Errorf("unknown model variant %q", variant)
	}
}

// claudeBody: structured role/content turns with a separate system field.
func claudeBody(instruction string, conversation []chat.Message, params chat.SamplingParams) ([]byte, error) {
	type request struct {
		AnthropicVersion string         `json:"anthropic_version"`
		MaxTokens        int            `json:"max_tokens"`
		System           string         `json:"system"`
		Messages         []chat.Message `json:"messages"`
		Temperature      float64        `json:"temperature"`
		TopP             float64        `json:"top_p"`
		TopK             int            `json:"top_k"`
		StopSequences    []string       `json:"stop_sequences"`
	}
	return json.Marshal(request{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        params.MaxTokens,
		System:           instruction,
		Messages:         conversation,
		Temperature:      params.Temperature,
		TopP:             params.TopP,
		TopK:             params.TopK,
		StopSequences:    []string{},
	})
}

// daisiiBody: one pre-flattened marked-up prompt. TopK is unsupported
// and dropped.
func daisiiBody(instruction string, conversation []chat.Message, params chat.SamplingParams) ([]byte, error) {
	type request struct {
		Prompt      string  `json:"prompt"`
		MaxGenLen   int     `json:"max_gen_len"`
		Temperature float64 `json:"temperature"`
		TopP        float64 `json:"top_p"`
	}
	return json.Marshal(request{
		Prompt:      FlattenDaisiiPrompt(instruction, conversation),
		MaxGenLen:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	})
}

// titanBody: a single instruction+conversation text block. TopK is
// unsupported and dropped.
func titanBody(instruction string, conversation []chat.Message, params chat.SamplingParams) ([]byte, error) {
	type generationConfig struct {
		MaxTokenCount int      `json:"maxTokenCount"`
		Temperature   float64  `json:"temperature"`
		TopP          float64  `json:"topP"`
		StopSequences []string `json:"stopSequences"`
	}
	type request struct {
		InputText            string           `json:"inputText"`
		TextGenerationConfig generationConfig `json:"textGenerationConfig"`
	}
	return json.Marshal(request{
		InputText: FlattenTitanPrompt(instruction, conversation),
		TextGenerationConfig: generationConfig{
			MaxTokenCount: params.MaxTokens,
			Temperature:   params.Temperature,
			TopP:          params.TopP,
			StopSequences: []string{"User:"},
		},
	})
}
