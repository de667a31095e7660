package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChatAgainstCompatibleServer(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"hold the line"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAI(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1", Model: "test-model"})
	out, err := c.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "doctrine"},
		{Role: RoleUser, Content: "situation"},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if out != "hold the line" {
		t.Errorf("reply = %q", out)
	}
	if gotReq["model"] != "test-model" {
		t.Errorf("model = %v", gotReq["model"])
	}
	if gotReq["reasoning_effort"] != "minimal" {
		t.Errorf("reasoning_effort = %v", gotReq["reasoning_effort"])
	}
	if n, _ := gotReq["max_tokens"].(float64); int(n) != maxReplyTokens {
		t.Errorf("max_tokens = %v", gotReq["max_tokens"])
	}
	msgs, _ := gotReq["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestChatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	c := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "m"})
	if _, err := c.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}}); err == nil {
		t.Error("empty choices should error")
	}
}

func TestChatStreamDeliversDeltasInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{"[[1,", "2],[3", ",4]]"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "m"})
	var chunks []string
	err := c.ChatStream(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, func(s string) {
		chunks = append(chunks, s)
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if joined := strings.Join(chunks, ""); joined != "[[1,2],[3,4]]" {
		t.Errorf("assembled = %q from %v", joined, chunks)
	}
}
