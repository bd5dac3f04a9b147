package s3

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "staging/file.jpg", want: "staging/file.jpg"},
		{name: "simple prefix", prefix: "root", key: "staging/file.jpg", want: "root/staging/file.jpg"},
		{name: "prefix trailing slash", prefix: "root/", key: "staging/file.jpg", want: "root/staging/file.jpg"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/staging/file.jpg", want: "root/staging/file.jpg"},
		{name: "nested prefix", prefix: "root/sub", key: "staging/file.jpg", want: "root/sub/staging/file.jpg"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type recordedCall struct {
	method string
	path   string
	body   string
}

func TestSaveThenDeleteHitsBucket(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	client := s3.NewFromConfig(aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
	})

	store, err := NewWithClient(client, "bills", "tmp", "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	key, size, mimeType, err := store.Save(context.Background(), "bill.txt", strings.NewReader("Total: 500"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("Total: 500")) {
		t.Fatalf("unexpected size %d", size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type %s", mimeType)
	}
	if !strings.HasPrefix(key, "staging/") {
		t.Fatalf("unexpected key %s", key)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("delete: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	wantPath := "/bills/tmp/" + key
	if calls[0].method != http.MethodPut || calls[0].path != wantPath {
		t.Fatalf("unexpected put call: %+v", calls[0])
	}
	if !strings.Contains(calls[0].body, "Total: 500") {
		t.Fatalf("expected payload in put body, got %q", calls[0].body)
	}
	if calls[1].method != http.MethodDelete || calls[1].path != wantPath {
		t.Fatalf("unexpected delete call: %+v", calls[1])
	}
}

func TestNewWithClientRequiresBucket(t *testing.T) {
	if _, err := NewWithClient(nil, " ", "", ""); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
