package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		if req.Stream {
			t.Error("Expected stream=false")
		}
		if req.Model != "llama3:latest" {
			t.Errorf("Unexpected model %q", req.Model)
		}
		if req.Options.Temperature != 0.3 {
			t.Errorf("Unexpected temperature %v", req.Options.Temperature)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "No classes today.", Done: true})
	}))
	defer srv.Close()

	c := NewOllama(srv.URL, "llama3:latest", 5*time.Second)
	out, err := c.Generate(context.Background(), "summarize", 0.3)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "No classes today." {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllama(srv.URL, "missing:model", time.Second)
	if _, err := c.Generate(context.Background(), "hi", 0.5); err == nil {
		t.Fatal("Expected error on non-200 response")
	}
}

func TestModelDefaults(t *testing.T) {
	c := NewOllama("", "", 0)
	if c.Model() != "llama3:latest" {
		t.Errorf("Expected default model, got %q", c.Model())
	}

	c = NewOllama("http://ollama:11434", "mistral:7b", time.Minute)
	if c.Model() != "mistral:7b" {
		t.Errorf("Expected configured model, got %q", c.Model())
	}
}
