package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hubpilot/hubpilot/internal/agent"
	"github.com/hubpilot/hubpilot/internal/config"
	"github.com/hubpilot/hubpilot/internal/llm"
	"github.com/hubpilot/hubpilot/internal/logger"
	"github.com/hubpilot/hubpilot/internal/remote"
	"github.com/hubpilot/hubpilot/internal/tui"
	"github.com/hubpilot/hubpilot/internal/workspace"
)

var Version = "dev"

func main() {
	// Ensure log file is closed on exit
	defer logger.CloseLogFile()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]

	// Handle version flag before logging so a version check leaves no log file
	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v" || args[0] == "version") {
		fmt.Printf("hubpilot version %s\n", Version)
		return nil
	}

	logger.Debug("hubpilot session started, args=%v", args)

	if len(args) > 0 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		printHelp()
		return nil
	}

	anthropicKey := extractFlag(&args, "--token")
	githubToken := extractFlag(&args, "--github-token")

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		AnthropicKeyOverride: anthropicKey,
		GitHubTokenOverride:  githubToken,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	// Remote side: client and account scanner share one GitHub client.
	// Without a token only public reads will succeed; the client is still
	// wired so browsing public repositories works.
	var api remote.API
	var scanner *remote.Scanner
	client := remote.NewClient(ctx, cfg.GitHubToken)
	api = client
	if cfg.GitHubToken != "" {
		scanner = remote.NewScanner(client, cfg.Scan.PageSize, cfg.Scan.RequestDelay)
	} else {
		logger.Warn("GITHUB_TOKEN not set, account scanning disabled")
	}

	// Engine side: the base client, optionally behind the token bucket.
	var engine llm.EngineClient = llm.NewClient(
		cfg.AnthropicKey,
		cfg.MaxTokens,
		cfg.Temperature,
		cfg.RateLimit.MaxRetries,
	)
	if cfg.RateLimit.EnableRateLimiting {
		engine = llm.NewRateLimitedClient(engine, &cfg.RateLimit)
	}

	executor := agent.NewExecutor(api)
	orch := agent.New(engine, executor, cfg.Disclosure, agent.Options{
		Model:        cfg.GetDefaultModel(),
		HasEngineKey: cfg.AnthropicKey != "",
	})
	orch.UpdateWorkspace(workspace.State{ActiveView: workspace.ViewRepositories})

	return tui.Run(orch, api, scanner, cfg)
}

// extractFlag removes "--name value" or "--name=value" from args and returns
// the value.
func extractFlag(args *[]string, name string) string {
	a := *args
	for i := 0; i < len(a); i++ {
		if a[i] == name && i+1 < len(a) {
			value := a[i+1]
			*args = append(a[:i], a[i+2:]...)
			return value
		}
		if strings.HasPrefix(a[i], name+"=") {
			value := strings.TrimPrefix(a[i], name+"=")
			*args = append(a[:i], a[i+1:]...)
			return value
		}
	}
	return ""
}

func printHelp() {
	fmt.Println(`hubpilot - chat with your GitHub account

Usage:
  hubpilot [flags]

Flags:
  --token <key>          Anthropic API key (or ANTHROPIC_API_KEY)
  --github-token <tok>   GitHub token (or GITHUB_TOKEN)
  --version, -v          Print version
  --help, -h             Show this help

Inside the client:
  /repos                  list your repositories
  /repo <owner>/<name>    open a repository
  /open <path>            preview a file
  /context ... /model ... see /help

Every file-changing action the assistant proposes waits for your
approval: y to run it, n to cancel.`)
}
