package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestOllamaPolishStreaming(t *testing.T) {
	chunks := []string{"Turn ", "on ", "the ", "lights."}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %q", r.Method)
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, c := range chunks {
			fmt.Fprintf(w, `{"response":%q,"done":false}`+"\n", c)
		}
		fmt.Fprintln(w, `{"response":"","done":true}`)
	}))
	defer srv.Close()

	p := NewOllamaPolisher(srv.URL, "qwen2.5:1.5b")

	var mu sync.Mutex
	var tokens []string
	got, err := p.Polish(context.Background(), "turn on the lights", true, func(tok string) {
		mu.Lock()
		tokens = append(tokens, tok)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "Turn on the lights." {
		t.Fatalf("polished = %q, want assembled stream", got)
	}
	if len(tokens) != len(chunks) {
		t.Fatalf("tokens = %d, want %d", len(tokens), len(chunks))
	}
}

func TestOllamaPolishServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaPolisher(srv.URL, "missing")

	got, err := p.Polish(context.Background(), "original text", false, nil)
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
	// При ошибке возвращается исходный текст для отката
	if got != "original text" {
		t.Fatalf("fallback text = %q, want the original", got)
	}
}

func TestOllamaPolishStreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"partial","done":false}`)
		fmt.Fprintln(w, `{"error":"out of memory"}`)
	}))
	defer srv.Close()

	p := NewOllamaPolisher(srv.URL, "qwen2.5:1.5b")

	got, err := p.Polish(context.Background(), "original text", false, nil)
	if err == nil || !strings.Contains(err.Error(), "out of memory") {
		t.Fatalf("error = %v, want the in-stream error surfaced", err)
	}
	if got != "original text" {
		t.Fatalf("fallback text = %q, want the original", got)
	}
}

func TestOllamaPolishEmptyInput(t *testing.T) {
	p := NewOllamaPolisher("http://localhost:1", "qwen2.5:1.5b")

	// Пустой текст не должен ходить в сеть
	got, err := p.Polish(context.Background(), "   ", false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "   " {
		t.Fatalf("got %q, want input unchanged", got)
	}
}

func TestOllamaListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintln(w, `{"models":[{"name":"qwen2.5:1.5b"},{"name":"llama3:8b"}]}`)
	}))
	defer srv.Close()

	p := NewOllamaPolisher(srv.URL, "")

	names, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "qwen2.5:1.5b" {
		t.Fatalf("models = %v", names)
	}

	if !p.IsAvailable(context.Background()) {
		t.Fatal("server must be reported available")
	}
}

func TestChatPrompt(t *testing.T) {
	prompt := chatPrompt("hello", true)

	if !strings.Contains(prompt, "<|im_start|>system") {
		t.Fatal("prompt must contain the system block")
	}
	if !strings.Contains(prompt, "hello") {
		t.Fatal("prompt must contain the user text")
	}
	if !strings.Contains(prompt, "сохрани язык оригинала") {
		t.Fatal("keepLanguage must add the language instruction")
	}
	if !strings.HasSuffix(prompt, "<|im_start|>assistant\n") {
		t.Fatal("prompt must end with the assistant header")
	}

	plain := chatPrompt("hello", false)
	if strings.Contains(plain, "сохрани язык оригинала") {
		t.Fatal("language instruction must be absent without keepLanguage")
	}
}

func TestCleanOutput(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  text  ", "text"},
		{"text<|im_end|>", "text"},
		{"text<|im_end|>\nleftover", "text"},
		{"", ""},
	}

	for _, c := range cases {
		if got := cleanOutput(c.in); got != c.want {
			t.Fatalf("cleanOutput(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
