package prompt

import (
	"fmt"

	"github.com/Conceptual-Machines/poster-api/internal/models"
)

// Pair is the system/user message pair sent upstream
type Pair struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// Builder builds prompts for both content modes
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// SystemPrompt returns the fixed contract for a mode. It never contains
// request data.
func (b *Builder) SystemPrompt(mode models.Mode) string {
	if mode == models.ModeList {
		return b.loader.GetCardsSystemPrompt()
	}
	return b.loader.GetPosterSystemPrompt()
}

// UserPrompt interpolates the request into a one-line instruction.
// Values are not escaped: the only consumer is the model.
func (b *Builder) UserPrompt(mode models.Mode, topic, tone string, count int) string {
	if mode == models.ModeList {
		return fmt.Sprintf("topic: '%s', count: %d, tone: '%s'", topic, count, tone)
	}
	return fmt.Sprintf("topic: '%s', tone: '%s', audience: children (age 6-12). Output the POSTER JSON.", topic, tone)
}

// Build returns the prompt pair for a request
func (b *Builder) Build(mode models.Mode, topic, tone string, count int) Pair {
	return Pair{
		System: b.SystemPrompt(mode),
		User:   b.UserPrompt(mode, topic, tone, count),
	}
}

// Build is a convenience wrapper around a default Builder
func Build(mode models.Mode, topic, tone string, count int) Pair {
	return NewPromptBuilder().Build(mode, topic, tone, count)
}
