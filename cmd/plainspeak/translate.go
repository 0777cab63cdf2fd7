package main

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/application/service"
	"github.com/helixml/plainspeak/domain/translation"
	"github.com/helixml/plainspeak/internal/clientopts"
	"github.com/helixml/plainspeak/internal/log"
)

type translateFlags struct {
	envFile string
	mode    string
	tone    string
	explain bool
	image   string
}

func translateCmd() *cobra.Command {
	var flags translateFlags

	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate a single phrase",
		Long: `Translate a single phrase and print the result.

The phrase is taken from the argument, or read from the image given with
--image. Logs go to stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = args[0]
			}
			if text == "" && flags.image == "" {
				return errors.New("provide a phrase or --image")
			}
			return runTranslate(cmd.Context(), cmd.OutOrStdout(), flags, text)
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&flags.mode, "mode", translation.ModeNTToND.String(), "Direction: nt-to-nd or nd-to-nt")
	cmd.Flags().StringVar(&flags.tone, "tone", translation.ToneNeutral.String(), "Tone: neutral, formal, casual or empathetic")
	cmd.Flags().BoolVar(&flags.explain, "explain", false, "Include an analysis of literal and implied meaning")
	cmd.Flags().StringVar(&flags.image, "image", "", "Read the phrase from an image file")

	return cmd
}

func runTranslate(ctx context.Context, out io.Writer, flags translateFlags, text string) error {
	cfg, err := loadConfig(flags.envFile)
	if err != nil {
		return err
	}

	slogger := log.New(os.Stderr, cfg.LogFormat(), cfg.LogLevel())

	opts, err := clientopts.Options(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, plainspeak.WithLogger(slogger))

	client, err := plainspeak.New(opts...)
	if err != nil {
		return fmt.Errorf("create plainspeak client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close plainspeak client", slog.Any("error", err))
		}
	}()

	explain := "no"
	if flags.explain {
		explain = "yes"
	}
	fields := translation.Fields{
		Text:           text,
		Mode:           flags.mode,
		Tone:           flags.tone,
		ExplainContext: explain,
	}

	var result service.Translation
	if flags.image != "" {
		data, err := os.ReadFile(flags.image)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		result, err = client.TranslateImage(ctx, data, fields)
		if err != nil {
			return errors.New(translation.UserMessage(err))
		}
	} else {
		result, err = client.Translate(ctx, fields)
		if err != nil {
			return errors.New(translation.UserMessage(err))
		}
	}

	return writePlain(out, result)
}

// writePlain prints each section as terminal text.
func writePlain(out io.Writer, result service.Translation) error {
	for i, s := range result.Result().Sections() {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(out, "%s:\n%s\n", s.Name(), plainText(s.Content())); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "\n%s\n", translation.Disclaimer)
	return err
}

// plainText turns escaped section content back into terminal text.
func plainText(content string) string {
	return html.UnescapeString(strings.ReplaceAll(content, "<br>", "\n"))
}
