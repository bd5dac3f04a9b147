package amounts

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"medbill-amounts/internal/llm"
	localstore "medbill-amounts/internal/shared/storage/object/local"
)

type fakeLLM struct {
	mu       sync.Mutex
	text     string
	err      error
	panicMsg string
	calls    []llm.Request
}

func (f *fakeLLM) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.text, Model: "fake-model", FinishReason: "STOP"}, nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestService(t *testing.T, client llm.Client) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	return &Service{LLM: client, Store: localstore.New(dir), Temperature: 0.1}, dir
}

func stagedFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	return len(entries)
}
