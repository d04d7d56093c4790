package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type scriptedDrafter struct {
	generateErr error
	improveErr  error
	calls       int
}

func (d *scriptedDrafter) GenerateEmail(ctx context.Context, req DraftRequest) (string, error) {
	d.calls++
	if d.generateErr != nil {
		return "", d.generateErr
	}
	return "gemini draft", nil
}

func (d *scriptedDrafter) ImproveEmail(ctx context.Context, content, instruction, contextInfo string) (string, error) {
	d.calls++
	if d.improveErr != nil {
		return "", d.improveErr
	}
	return "gemini improved", nil
}

// ollamaTestServer mimics the /api/generate endpoint for both streaming and
// non-streaming requests.
func ollamaTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Stream bool `json:"stream"`
		}
		if err := jsonDecode(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !req.Stream {
			fmt.Fprint(w, `{"response": "ollama draft", "done": true}`)
			return
		}
		fmt.Fprintln(w, `{"response": "Hello ", "done": false}`)
		fmt.Fprintln(w, `{"response": "world", "done": false}`)
		fmt.Fprintln(w, `{"response": "", "done": true}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func jsonDecode(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func TestShouldFallback(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("dial tcp 127.0.0.1:11434: connection refused"), true},
		{errors.New("Get \"http://x\": no such host"), true},
		{errors.New("429 Too Many Requests"), true},
		{errors.New("quota exceeded for model"), true},
		{errors.New("RESOURCE_EXHAUSTED"), true},
		{errors.New("invalid API key"), false},
		{errors.New("prompt blocked by safety filter"), false},
		{nil, false},
	}

	for _, tc := range cases {
		if got := shouldFallback(tc.err); got != tc.want {
			t.Errorf("shouldFallback(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestFallbackRoutesToOllamaOnConnectionError(t *testing.T) {
	srv := ollamaTestServer(t)
	gemini := &scriptedDrafter{generateErr: errors.New("dial tcp: connection refused")}
	svc := NewFallbackService(gemini, NewOllamaService(srv.URL, "llama3"))

	content, err := svc.GenerateEmail(context.Background(), DraftRequest{CandidateName: "Jane", JobTitle: "Engineer"})
	if err != nil {
		t.Fatalf("GenerateEmail: %v", err)
	}
	if content != "ollama draft" {
		t.Fatalf("content = %q, want the fallback draft", content)
	}
}

func TestFallbackSurfacesNonRetryableErrors(t *testing.T) {
	srv := ollamaTestServer(t)
	gemini := &scriptedDrafter{generateErr: errors.New("invalid API key")}
	svc := NewFallbackService(gemini, NewOllamaService(srv.URL, "llama3"))

	_, err := svc.GenerateEmail(context.Background(), DraftRequest{CandidateName: "Jane", JobTitle: "Engineer"})
	if err == nil || !strings.Contains(err.Error(), "invalid API key") {
		t.Fatalf("err = %v, want the primary error untouched", err)
	}
}

func TestFallbackPrefersGeminiWhenHealthy(t *testing.T) {
	srv := ollamaTestServer(t)
	gemini := &scriptedDrafter{}
	svc := NewFallbackService(gemini, NewOllamaService(srv.URL, "llama3"))

	improved, err := svc.ImproveEmail(context.Background(), "hi", "longer", "")
	if err != nil {
		t.Fatalf("ImproveEmail: %v", err)
	}
	if improved != "gemini improved" {
		t.Fatalf("improved = %q, want the primary result", improved)
	}
}

func TestOllamaStreamParsesChunks(t *testing.T) {
	srv := ollamaTestServer(t)
	ollama := NewOllamaService(srv.URL, "llama3")

	var chunks []string
	err := ollama.ImproveEmailStream(context.Background(), "hi", "longer", "", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("ImproveEmailStream: %v", err)
	}
	if strings.Join(chunks, "") != "Hello world" {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestStreamFallsBackToSingleGeminiChunk(t *testing.T) {
	// Point Ollama at a closed port so the stream fails to connect.
	gemini := &scriptedDrafter{}
	svc := NewFallbackService(gemini, NewOllamaService("http://127.0.0.1:1", "llama3"))

	var chunks []string
	err := svc.ImproveEmailStream(context.Background(), "hi", "longer", "", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("ImproveEmailStream: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "gemini improved" {
		t.Fatalf("chunks = %v, want one Gemini chunk", chunks)
	}
}

func TestStreamFailureAfterChunksIsNotReplayed(t *testing.T) {
	// Emit one chunk, then drop the connection before done arrives. The
	// consumer already holds partial output, so replaying the full Gemini
	// revision would corrupt it; the call must fail instead.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response": "partial ", "done": false}`)
		w.(http.Flusher).Flush()
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		conn.Close()
	}))
	t.Cleanup(srv.Close)

	gemini := &scriptedDrafter{}
	svc := NewFallbackService(gemini, NewOllamaService(srv.URL, "llama3"))

	var chunks []string
	err := svc.ImproveEmailStream(context.Background(), "hi", "longer", "", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err == nil {
		t.Fatal("ImproveEmailStream: want an error after the stream broke")
	}
	if gemini.calls != 0 {
		t.Fatalf("gemini calls = %d, want no fallback once chunks were delivered", gemini.calls)
	}
	if strings.Join(chunks, "") != "partial " {
		t.Fatalf("chunks = %v, want only the partial output", chunks)
	}
}

func TestOllamaStreamStopsOnChunkError(t *testing.T) {
	srv := ollamaTestServer(t)
	ollama := NewOllamaService(srv.URL, "llama3")

	wantErr := errors.New("client went away")
	err := ollama.ImproveEmailStream(context.Background(), "hi", "longer", "", func(chunk string) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want the consumer error", err)
	}
}
