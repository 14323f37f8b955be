package bedrock

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Phicks-debug/daisii/internal/domain/chat"
)

func sampleConversation() []chat.Message {
	return []chat.Message{
		{Role: chat.RoleUser, Content: chat.TextContent("What is Go?")},
		{Role: chat.RoleAssistant, Content: chat.TextContent("A programming language.")},
		{Role: chat.RoleUser, Content: chat.TextContent("Who made it?")},
	}
}

func sampleParams() chat.SamplingParams {
	return chat.SamplingParams{MaxTokens: 512, Temperature: 0.5, TopP: 0.8, TopK: 100}
}

func TestClaudeRequestBody(t *testing.T) {
	body, err := RequestBody(chat.VariantClaude, "be helpful", sampleConversation(), sampleParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("body not valid JSON: %v", err)
	}

	if string(decoded["anthropic_version"]) != `"bedrock-2023-05-31"` {
		t.Fatalf("unexpected anthropic_version: %s", decoded["anthropic_version"])
	}
	if string(decoded["system"]) != `"be helpful"` {
		t.Fatalf("instruction must go in the system field, got %s", decoded["system"])
	}
	if string(decoded["max_tokens"]) != "512" {
		t.Fatalf("unexpected max_tokens: %s", decoded["max_tokens"])
	}
	if string(decoded["top_k"]) != "100" {
		t.Fatalf("unexpected top_k: %s", decoded["top_k"])
	}
	if string(decoded["stop_sequences"]) != "[]" {
		t.Fatalf("stop_sequences must be present and empty, got %s", decoded["stop_sequences"])
	}

	var messages []chat.Message
	if err := json.Unmarshal(decoded["messages"], &messages); err != nil {
		t.Fatalf("messages not decodable: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
}

func TestDaisiiRequestBody(t *testing.T) {
	body, err := RequestBody(chat.VariantDaisii, "be daisii", sampleConversation(), sampleParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("body not valid JSON: %v", err)
	}

	if string(decoded["max_gen_len"]) != "512" {
		t.Fatalf("unexpected max_gen_len: %s", decoded["max_gen_len"])
	}
	if _, ok := decoded["top_k"]; ok {
		t.Fatal("top_k is unsupported and must be dropped")
	}

	var prompt string
	if err := json.Unmarshal(decoded["prompt"], &prompt); err != nil {
		t.Fatalf("prompt not decodable: %v", err)
	}
	if !strings.Contains(prompt, "be daisii") {
		t.Fatal("instruction must be embedded in the prompt")
	}
	if !strings.HasSuffix(prompt, "<|start_header_id|>assistant<|end_header_id|>\n\n") {
		t.Fatalf("prompt must end with an open assistant header, got %q", prompt)
	}
}

func TestTitanRequestBody(t *testing.T) {
	body, err := RequestBody(chat.VariantTitan, "be titan", sampleConversation(), sampleParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		InputText string `json:"inputText"`
		Config    struct {
			MaxTokenCount int      `json:"maxTokenCount"`
			Temperature   float64  `json:"temperature"`
			TopP          float64  `json:"topP"`
			StopSequences []string `json:"stopSequences"`
		} `json:"textGenerationConfig"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("body not valid JSON: %v", err)
	}

	if decoded.Config.MaxTokenCount != 512 {
		t.Fatalf("unexpected maxTokenCount: %d", decoded.Config.MaxTokenCount)
	}
	if len(decoded.Config.StopSequences) != 1 || decoded.Config.StopSequences[0] != "User:" {
		t.Fatalf("expected stop sequence [User:], got %v", decoded.Config.StopSequences)
	}
	if !strings.HasPrefix(decoded.InputText, "be titan") {
		t.Fatal("instruction must lead the input text")
	}
	if !strings.HasSuffix(decoded.InputText, "Bot:") {
		t.Fatalf("input text must end with an open Bot: turn, got %q", decoded.InputText)
	}
}

func TestRequestBodyUnknownVariant(t *testing.T) {
	if _, err := RequestBody(chat.Variant("gpt"), "", nil, sampleParams()); err == nil {
		t.Fatal("expected an error for an unknown variant")
	}
}
