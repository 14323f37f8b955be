package bedrock

import (
	"testing"

	"github.com/Phicks-debug/daisii/internal/domain/chat"
)

func TestFlattenDaisiiPrompt(t *testing.T) {
	conversation := []chat.Message{
		{Role: chat.RoleUser, Content: chat.TextContent("hi")},
		{Role: chat.RoleAssistant, Content: chat.TextContent("hello")},
	}

	got := FlattenDaisiiPrompt("sys", conversation)
	want := "<|begin_of_text|>" +
		"<|start_header_id|>system<|end_header_id|>\n\nsys<|eot_id|>" +
		"<|start_header_id|>user<|end_header_id|>\n\nhi<|eot_id|>" +
		"<|start_header_id|>assistant<|end_header_id|>\n\nhello<|eot_id|>" +
		"<|start_header_id|>assistant<|end_header_id|>\n\n"

	if got != want {
		t.Fatalf("unexpected prompt:\ngot  %q\nwant %q", got, want)
	}
}

func TestFlattenTitanPrompt(t *testing.T) {
	conversation := []chat.Message{
		{Role: chat.RoleUser, Content: chat.TextContent("hi")},
		{Role: chat.RoleAssistant, Content: chat.TextContent("hello")},
		{Role: chat.RoleUser, Content: chat.TextContent("bye")},
	}

	got := FlattenTitanPrompt("sys", conversation)
	want := "sys\n\nUser: hi\nBot: hello\nUser: bye\nBot:"

	if got != want {
		t.Fatalf("unexpected prompt:\ngot  %q\nwant %q", got, want)
	}
}

func TestFlattenTitanPromptEmptyConversation(t *testing.T) {
	got := FlattenTitanPrompt("sys", nil)
	if got != "sys\n\nBot:" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}
