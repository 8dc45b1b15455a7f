package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/interview-coach/internal/fetch"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/resume"
)

var (
	parseOutputFile string
	parseJob        string
)

var parseCmd = &cobra.Command{
	Use:   "parse <resume.pdf>",
	Short: "Extract a PDF résumé into structured JSON",
	Long: `Extract a PDF résumé into structured JSON. With --job, the résumé is also
scored against a job posting given as a URL or a text file.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutputFile, "out", "o", "", "Write JSON here instead of stdout")
	parseCmd.Flags().StringVarP(&parseJob, "job", "j", "", "Job posting URL or text file to match against")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	text, err := resume.ExtractPDFText(f, info.Size())
	if err != nil {
		return err
	}

	gw, err := newGateway(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = gw.Close() }()

	ctx := cmd.Context()
	data, err := resume.NewParser(gw, logger).Parse(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to parse résumé: %w", err)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	printer := observability.NewPrinter(cmd.ErrOrStderr())
	if parseOutputFile == "" {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(parseOutputFile, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", parseOutputFile, err)
		}
		printer.PrintResume(data)
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", parseOutputFile)
	}

	if parseJob == "" {
		return nil
	}
	jobText, err := loadJobText(ctx, parseJob, logger)
	if err != nil {
		return err
	}
	matcher, err := resume.NewMatcher(gw, 1, logger)
	if err != nil {
		return err
	}
	result, err := matcher.Analyze(ctx, out, jobText)
	if err != nil {
		return fmt.Errorf("failed to match résumé: %w", err)
	}
	printer.PrintMatch(result)
	return nil
}

// loadJobText reads a posting from a URL or a local file.
func loadJobText(ctx context.Context, src string, logger *zap.Logger) (string, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return fetch.NewJobFetcher(fetch.DefaultOptions(), 1, time.Minute, logger).JobText(ctx, src)
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read job posting: %w", err)
	}
	return string(b), nil
}
