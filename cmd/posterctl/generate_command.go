package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Conceptual-Machines/poster-api/internal/app"
	"github.com/Conceptual-Machines/poster-api/internal/metrics"
	"github.com/Conceptual-Machines/poster-api/internal/models"
	"github.com/Conceptual-Machines/poster-api/internal/observability"
	"github.com/Conceptual-Machines/poster-api/internal/services"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	topic  string
	tone   string
	layout string
	format string
	count  int
	stream bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a poster or card list and print it as JSON",
		Long: `Generate runs the same primary/fallback orchestration as the HTTP
service and prints the response body to stdout.

With --stream the card list is generated with a single streaming call and
raw text deltas are echoed to stderr as they arrive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			if opts.format != formatJSON && opts.format != formatTable {
				return fmt.Errorf("unknown format %q (allowed: %s, %s)", opts.format, formatJSON, formatTable)
			}

			req, err := services.NewGenerationRequest(opts.topic, opts.tone, opts.layout, opts.count)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			tracer := observability.InitializeLangfuse(runCtx, cfg)
			defer tracer.Flush(context.Background())

			generator := app.NewGenerator(runCtx, cfg, metrics.NewRecorder(nil, nil), tracer)

			if opts.stream {
				result, err := generator.StreamCards(runCtx, req, func(delta string) error {
					_, werr := fmt.Fprint(cmd.ErrOrStderr(), delta)
					return werr
				})
				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				return writeResult(cmd, opts.format, result)
			}

			result, err := generator.Generate(runCtx, req)
			if err != nil {
				return err
			}
			return writeResult(cmd, opts.format, result)
		},
	}

	cmd.Flags().StringVarP(&opts.topic, "topic", "t", "", "Topic of the poster (required)")
	cmd.Flags().StringVar(&opts.tone, "tone", "", "Tone hint (default 兒童友好)")
	cmd.Flags().StringVarP(&opts.layout, "layout", "l", "poster", "Layout: poster or list")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "Number of cards in list mode (0 selects the default)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "Output format: json or table")
	cmd.Flags().BoolVar(&opts.stream, "stream", false, "Stream a card list (implies --layout list)")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func writeResult(cmd *cobra.Command, format string, result *models.GenerationResult) error {
	if format == formatTable {
		_, err := fmt.Fprint(cmd.OutOrStdout(), renderResult(result))
		return err
	}
	return writeJSON(cmd, result)
}
