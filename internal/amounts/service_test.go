package amounts

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseModelText(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		for _, text := range []string{"", "   \n\t"} {
			if _, err := ParseModelText(text); !errors.Is(err, ErrEmptyResponse) {
				t.Fatalf("expected ErrEmptyResponse for %q, got %v", text, err)
			}
		}
	})

	t.Run("invalid json keeps stripped text", func(t *testing.T) {
		_, err := ParseModelText("```json\nTotal is 500\n```")
		var invalid *InvalidJSONError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidJSONError, got %v", err)
		}
		if invalid.Raw != "Total is 500" {
			t.Fatalf("unexpected raw: %q", invalid.Raw)
		}
	})

	t.Run("valid json unchanged", func(t *testing.T) {
		got, err := ParseModelText(exampleINR)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != exampleINR {
			t.Fatalf("expected payload unchanged, got %s", got)
		}
	})

	t.Run("fence only is empty after stripping", func(t *testing.T) {
		_, err := ParseModelText("```json\n```")
		var invalid *InvalidJSONError
		if !errors.As(err, &invalid) || invalid.Raw != "" {
			t.Fatalf("expected invalid json with empty raw, got %v", err)
		}
	})
}

func TestResolveMIME(t *testing.T) {
	cases := []struct {
		declared, sniffed, want string
	}{
		{declared: "image/png", sniffed: "image/jpeg", want: "image/png"},
		{declared: "Image/PNG; charset=binary", sniffed: "", want: "image/png"},
		{declared: "", sniffed: "image/webp", want: "image/webp"},
		{declared: "application/octet-stream", sniffed: "application/pdf", want: "application/pdf"},
		{declared: "", sniffed: "text/plain; charset=utf-8", want: DefaultMIMEType},
		{declared: "", sniffed: "", want: DefaultMIMEType},
	}
	for _, tc := range cases {
		if got := resolveMIME(tc.declared, tc.sniffed); got != tc.want {
			t.Fatalf("resolveMIME(%q, %q) = %q, want %q", tc.declared, tc.sniffed, got, tc.want)
		}
	}
}

func TestServiceDetectSendsDocumentAndSchema(t *testing.T) {
	fake := &fakeLLM{text: exampleINR}
	svc, dir := newTestService(t, fake)
	ctx := context.Background()

	doc, err := svc.Stage(ctx, "bill.png", "image/png", bytes.NewReader([]byte("fake-png")))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if stagedFiles(t, dir) != 1 {
		t.Fatalf("expected one staged file")
	}

	got, err := svc.Detect(ctx, doc)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if string(got) != exampleINR {
		t.Fatalf("unexpected result: %s", got)
	}

	if fake.callCount() != 1 {
		t.Fatalf("expected one provider call, got %d", fake.callCount())
	}
	req := fake.calls[0]
	if req.Document.MIMEType != "image/png" || string(req.Document.Data) != "fake-png" {
		t.Fatalf("unexpected document blob: %+v", req.Document)
	}
	if req.Schema == nil || req.Schema.Properties["amounts"] == nil {
		t.Fatalf("expected extraction schema on the request")
	}
	if req.Temperature != 0.1 {
		t.Fatalf("unexpected temperature: %v", req.Temperature)
	}
	if !strings.Contains(req.Instruction, "Provenance") {
		t.Fatalf("expected fixed instruction")
	}
	if len(req.Hints) != 0 {
		t.Fatalf("expected no hints for an image, got %v", req.Hints)
	}

	if err := svc.Discard(ctx, doc); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if stagedFiles(t, dir) != 0 {
		t.Fatalf("expected staging dir to be empty after discard")
	}
}

func TestServiceDetectPassesSchemaDriftThrough(t *testing.T) {
	drifted := `{"currency":"INR","amounts":[{"type":"fee","value":"12"}]}`
	svc, _ := newTestService(t, &fakeLLM{text: drifted})
	ctx := context.Background()

	doc, err := svc.Stage(ctx, "bill.jpg", "", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	defer svc.Discard(ctx, doc)

	got, err := svc.Detect(ctx, doc)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if string(got) != drifted {
		t.Fatalf("expected drifted payload unchanged, got %s", got)
	}
}

func TestServiceDetectIgnoresUnreadablePDF(t *testing.T) {
	fake := &fakeLLM{text: exampleINR}
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	doc, err := svc.Stage(ctx, "bill.pdf", "application/pdf", strings.NewReader("%PDF-1.4 broken"))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	defer svc.Discard(ctx, doc)

	if _, err := svc.Detect(ctx, doc); err != nil {
		t.Fatalf("detect: %v", err)
	}
	req := fake.calls[0]
	if req.Document.MIMEType != "application/pdf" {
		t.Fatalf("unexpected mime: %s", req.Document.MIMEType)
	}
	if len(req.Hints) != 0 {
		t.Fatalf("expected no hint when the text layer cannot be read")
	}
}

func TestServiceDetectWrapsProviderError(t *testing.T) {
	svc, _ := newTestService(t, &fakeLLM{err: errors.New("quota exceeded")})
	ctx := context.Background()

	doc, err := svc.Stage(ctx, "bill.jpg", "", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	defer svc.Discard(ctx, doc)

	_, err = svc.Detect(ctx, doc)
	if err == nil || err.Error() != "generate: quota exceeded" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceStageFallsBackForBadFileName(t *testing.T) {
	svc, dir := newTestService(t, &fakeLLM{})
	ctx := context.Background()

	doc, err := svc.Stage(ctx, "../../etc/passwd", "", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if doc.FileName != fallbackFileName || !strings.HasSuffix(doc.Key, "_"+fallbackFileName) {
		t.Fatalf("unexpected staged document: %+v", doc)
	}
	if err := svc.Discard(ctx, doc); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if stagedFiles(t, dir) != 0 {
		t.Fatalf("expected staging dir empty")
	}
}

func TestServiceDiscardSurvivesCancelledContext(t *testing.T) {
	svc, dir := newTestService(t, &fakeLLM{})
	doc, err := svc.Stage(context.Background(), "bill.jpg", "", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Discard(ctx, doc); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if stagedFiles(t, dir) != 0 {
		t.Fatalf("expected staging dir empty")
	}
}
