package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skillsenselab/murmur/llm"
)

func TestProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Complete sent stream=true")
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:           req.Model,
			Message:         ollamaChatMessage{Role: "assistant", Content: "cleaned"},
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       5,
		})
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL, Model: "test-model"})
	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "fix this"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "cleaned" {
		t.Errorf("Content = %q, want cleaned", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", resp.Usage.TotalTokens)
	}
}

func TestProvider_Complete_SystemPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v, want system message first", req.Messages)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaChatMessage{Content: "ok"}, Done: true})
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL})
	_, err := p.Complete(context.Background(), llm.CompletionRequest{
		SystemPrompt: "you are an editor",
		Messages:     []llm.Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestProvider_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL})
	if _, err := p.Complete(context.Background(), llm.CompletionRequest{}); err == nil {
		t.Fatal("Complete() error = nil, want error")
	}
}

func TestProvider_Stream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		enc := json.NewEncoder(w)
		enc.Encode(ollamaChatResponse{Message: ollamaChatMessage{Content: "hel"}})
		enc.Encode(ollamaChatResponse{Message: ollamaChatMessage{Content: "lo"}})
		enc.Encode(ollamaChatResponse{Done: true})
	}))
	defer server.Close()

	p := NewProvider(Config{BaseURL: server.URL})
	ch, err := p.Stream(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	var text string
	var done bool
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatalf("stream chunk error: %v", chunk.Err)
		}
		text += chunk.Content
		done = chunk.Done
	}
	if text != "hello" {
		t.Errorf("streamed text = %q, want hello", text)
	}
	if !done {
		t.Error("final chunk did not set Done")
	}
}

func TestProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	p := NewProvider(Config{BaseURL: server.URL})
	if !p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = false for healthy server")
	}

	server.Close()
	if p.IsAvailable(context.Background()) {
		t.Error("IsAvailable() = true for closed server")
	}
}

func TestNewProvider_Defaults(t *testing.T) {
	p := NewProvider(Config{})
	if p.cfg.BaseURL != defaultOllamaURL {
		t.Errorf("BaseURL = %q, want %q", p.cfg.BaseURL, defaultOllamaURL)
	}
	if p.cfg.Model != defaultOllamaModel {
		t.Errorf("Model = %q, want %q", p.cfg.Model, defaultOllamaModel)
	}
	if p.Name() != ProviderName {
		t.Errorf("Name() = %q, want %q", p.Name(), ProviderName)
	}
}

func TestFactory(t *testing.T) {
	factory := Factory()
	p, err := factory(map[string]any{
		"base_url": "http://example.test",
		"model":    "mistral",
	})
	if err != nil {
		t.Fatalf("factory error = %v", err)
	}
	op, ok := p.(*Provider)
	if !ok {
		t.Fatalf("factory returned %T, want *Provider", p)
	}
	if op.cfg.BaseURL != "http://example.test" || op.cfg.Model != "mistral" {
		t.Errorf("cfg = %+v", op.cfg)
	}
}
