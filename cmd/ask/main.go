package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samvad-hq/samvad-llm-client/internal/app"
	"github.com/samvad-hq/samvad-llm-client/internal/config"
	"github.com/samvad-hq/samvad-llm-client/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ask failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		model    = flag.String("model", "", "model to ask")
		profile  = flag.String("profile", "", "server profile id from the profiles file")
		chatMode = flag.Bool("chat", false, "send the prompt through the chat endpoint")
	)
	flag.Parse()

	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" {
		return fmt.Errorf("usage: ask [-model name] [-profile id] [-chat] <prompt>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(cfg, log, *profile)
	if err != nil {
		log.Errorw("failed to initialize runner", "error", err)
		return err
	}
	defer runner.Close()

	return runner.Run(ctx, *model, prompt, *chatMode)
}
