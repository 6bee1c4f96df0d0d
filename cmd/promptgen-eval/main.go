package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	promptgen "github.com/goliatone/go-promptgen"
	"github.com/goliatone/go-promptgen/internal/ctxlog"
	"github.com/goliatone/go-promptgen/pkg/evals"
	"github.com/goliatone/go-promptgen/pkg/provider"
)

func main() {
	suitePath := flag.String("suite", "", "suite YAML file")
	providerName := flag.String("provider", "", "override the suite's provider")
	baseURL := flag.String("base-url", "", "OpenAI-compatible endpoint base URL")
	model := flag.String("model", "", "model sent to the completion endpoint")
	apiKeyEnv := flag.String("api-key-env", "OPENAI_API_KEY", "environment variable holding the API key")
	dryRun := flag.Bool("dry-run", false, "echo rendered prompts instead of calling a provider")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *suitePath == "" {
		fmt.Fprintln(os.Stderr, "-suite is required")
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	suite, err := evals.LoadSuite(*suitePath)
	if err != nil {
		logger.Error("load suite", "error", err)
		os.Exit(1)
	}
	if *providerName != "" {
		suite.Provider = *providerName
	}
	if *dryRun {
		suite.Provider = ""
	}

	registry := provider.NewRegistry()
	registry.MustRegister(provider.Static{})
	registry.MustRegister(provider.NewOpenAI(provider.Config{
		BaseURL: *baseURL,
		APIKey:  os.Getenv(*apiKeyEnv),
		Model:   *model,
	}))

	runner := evals.New(
		evals.WithLoader(promptgen.NewLoader()),
		evals.WithRegistry(registry),
		evals.WithFallbackProvider(provider.Static{}),
	)

	report, err := runner.Run(ctx, suite)
	if err != nil {
		logger.Error("run suite", "error", err)
		os.Exit(1)
	}

	failed := 0
	for _, result := range report.Results {
		status := "PASS"
		if !result.Passed {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%s  %s\n", status, result.Name)
		for _, failure := range result.Failures {
			fmt.Printf("      %s\n", failure)
		}
	}
	fmt.Printf("%d/%d cases passed\n", len(report.Results)-failed, len(report.Results))

	if failed > 0 {
		os.Exit(1)
	}
}
