package bedrock

import (
	"strings"

	"github.com/Phicks-debug/daisii/internal/domain/chat"
)

// FlattenDaisiiPrompt renders the instruction and conversation into the
// Llama 3 header markup expected by the completion-style variant, ending
// with an open assistant header so the model continues the exchange.
func FlattenDaisiiPrompt(instruction string, conversation []chat.Message) string {
	var b strings.Builder
	b.WriteString("<|begin_of_text|>")
	b.WriteString("<|start_header_id|>system<|end_header_id|>\n\n")
	b.WriteString(instruction)
	b.WriteString("<|eot_id|>")

	for _, msg := range conversation {
		role := "user"
		if msg.Role == chat.RoleAssistant {
			role = "assistant"
		}
		b.WriteString("<|start_header_id|>")
		b.WriteString(role)
		b.WriteString("<|end_header_id|>\n\n")
		b.WriteString(msg.Content.PlainText())
		b.WriteString("<|eot_id|>")
	}

	b.WriteString("<|start_header_id|>assistant<|end_header_id|>\n\n")
	return b.String()
}

// FlattenTitanPrompt renders the instruction and conversation into one
// "User:"/"Bot:" transcript block. The request's stop sequence on
// "User:" keeps the model from continuing the user's side.
func FlattenTitanPrompt(instruction string, conversation []chat.Message) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")

	for _, msg := range conversation {
		switch msg.Role {
		case chat.RoleAssistant:
			b.WriteString("Bot: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(msg.Content.PlainText())
		b.WriteString("\n")
	}

	b.WriteString("Bot:")
	return b.String()
}
