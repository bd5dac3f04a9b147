package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medbill-amounts/internal/llm/gemini"
	"medbill-amounts/internal/shared/config"
)

func TestProbePrintsRawBody(t *testing.T) {
	const reply = `{"candidates":[{"content":{"parts":[{"text":"OK"}]}}]}`
	var gotPrompt, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		if len(body.Contents) > 0 && len(body.Contents[0].Parts) > 0 {
			gotPrompt = body.Contents[0].Parts[0].Text
		}
		_, _ = io.WriteString(w, reply)
	}))
	defer srv.Close()

	cmd := newRootCmd(config.Config{GeminiAPIKey: "k", LLMModel: "gemini-2.0-flash", LLMBaseURL: srv.URL})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--prompt", "ping", "--model", "gemini-1.5-pro"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != reply {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if gotPrompt != "ping" {
		t.Fatalf("expected prompt override, got %q", gotPrompt)
	}
	if gotPath != "/v1beta/models/gemini-1.5-pro:generateContent" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

func TestProbeReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	cmd := newRootCmd(config.Config{GeminiAPIKey: "bad", LLMModel: "m", LLMBaseURL: srv.URL})
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	var apiErr *gemini.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected APIError 400, got %v", err)
	}
}

func TestProbeRequiresAPIKey(t *testing.T) {
	cmd := newRootCmd(config.Config{LLMModel: "m"})
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without GEMINI_API_KEY")
	}
}

func TestDefaultPromptUsedWithoutFlag(t *testing.T) {
	cmd := newRootCmd(config.Config{})
	if got := cmd.Flags().Lookup("prompt").DefValue; got != defaultPrompt {
		t.Fatalf("unexpected default prompt: %q", got)
	}
}
