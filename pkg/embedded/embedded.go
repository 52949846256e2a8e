package embedded

import (
	_ "embed"
)

// Embed the system prompt contracts, one per content mode
//
//go:embed data/prompts/poster_system.txt
var PosterSystemPromptTxt []byte

//go:embed data/prompts/cards_system.txt
var CardsSystemPromptTxt []byte
