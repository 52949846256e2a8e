package prompt

import (
	"strings"

	"github.com/Conceptual-Machines/poster-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetPosterSystemPrompt loads the poster JSON contract
func (l *Loader) GetPosterSystemPrompt() string {
	return strings.TrimSpace(string(embedded.PosterSystemPromptTxt))
}

// GetCardsSystemPrompt loads the card list JSON contract
func (l *Loader) GetCardsSystemPrompt() string {
	return strings.TrimSpace(string(embedded.CardsSystemPromptTxt))
}
