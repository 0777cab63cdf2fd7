// Package main is the entry point for the plainspeak Lambda function.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/internal/clientopts"
	"github.com/helixml/plainspeak/internal/config"
	"github.com/helixml/plainspeak/internal/log"
)

func main() {
	h, err := newHandlerFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	lambda.Start(h.Handle)
}

func newHandlerFromEnv() (*Handler, error) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Lambda collects stdout; JSON keeps records parseable in CloudWatch.
	slogger := log.New(os.Stdout, config.LogFormatJSON, cfg.LogLevel())

	opts, err := clientopts.Options(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, plainspeak.WithLogger(slogger))
	if keys := cfg.APIKeys(); len(keys) > 0 {
		opts = append(opts, plainspeak.WithAPIKeys(keys...))
	}

	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting plainspeak lambda", cfg.LogAttrs()...)

	client, err := plainspeak.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create plainspeak client: %w", err)
	}
	return NewHandler(client), nil
}
