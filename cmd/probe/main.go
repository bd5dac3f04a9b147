package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"medbill-amounts/internal/llm/gemini"
	"medbill-amounts/internal/shared/config"
)

const defaultPrompt = "Reply with the single word OK if you can read this message."

func main() {
	cfg := config.Load()
	if err := newRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "probe: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var (
		prompt  string
		model   string
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:           "probe",
		Short:         "Send one prompt to the Gemini REST API and print the raw response",
		Long:          "probe checks GEMINI_API_KEY connectivity by posting a single generateContent request and writing the response body to stdout.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := gemini.NewRESTClient(cfg.GeminiAPIKey, model, baseURL, timeout)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			raw, err := client.Probe(ctx, prompt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write(raw); err != nil {
				return fmt.Errorf("write stdout: %w", err)
			}
			if len(raw) == 0 || raw[len(raw)-1] != '\n' {
				_, _ = fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", defaultPrompt, "prompt text to send")
	cmd.Flags().StringVar(&model, "model", cfg.LLMModel, "model name")
	cmd.Flags().StringVar(&baseURL, "base-url", cfg.LLMBaseURL, "API base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout, 0 for none")
	return cmd
}
