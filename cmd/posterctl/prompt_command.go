package main

import (
	"fmt"

	"github.com/Conceptual-Machines/poster-api/internal/models"
	"github.com/Conceptual-Machines/poster-api/internal/prompt"
	"github.com/Conceptual-Machines/poster-api/internal/services"
	"github.com/spf13/cobra"
)

func newPromptCommand() *cobra.Command {
	var topic, tone, layout string
	var count int
	var systemOnly bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system and user prompt for a request without calling upstream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if systemOnly {
				return printSystemPrompt(cmd, layout)
			}
			req, err := services.NewGenerationRequest(topic, tone, layout, count)
			if err != nil {
				return err
			}
			return writeJSON(cmd, prompt.Build(req.Mode, req.Topic, req.Tone, req.Count))
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Topic of the poster")
	cmd.Flags().StringVar(&tone, "tone", "", "Tone hint")
	cmd.Flags().StringVarP(&layout, "layout", "l", "poster", "Layout: poster or list")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of cards in list mode")
	cmd.Flags().BoolVar(&systemOnly, "system", false, "Print only the embedded system prompt for --layout")

	return cmd
}

func printSystemPrompt(cmd *cobra.Command, layout string) error {
	loader := prompt.NewPromptLoader()
	text := loader.GetPosterSystemPrompt()
	if models.ParseMode(layout) == models.ModeList {
		text = loader.GetCardsSystemPrompt()
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
