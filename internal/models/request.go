package models

import "encoding/json"

// Mode selects the prompt pair and response shape
type Mode string

const (
	ModePoster Mode = "poster"
	ModeList   Mode = "list"
)

// ParseMode maps a layout string to a Mode. Anything other than "list"
// is a poster.
func ParseMode(layout string) Mode {
	if layout == string(ModeList) {
		return ModeList
	}
	return ModePoster
}

// Default request values
const (
	DefaultTone        = "兒童友好"
	DefaultPosterCount = 6
	DefaultListCount   = 8
	MaxCount           = 20
	MaxTopicRunes      = 200
)

// DefaultCount returns the item count used when the caller gives none
func (m Mode) DefaultCount() int {
	if m == ModeList {
		return DefaultListCount
	}
	return DefaultPosterCount
}

// GenerationRequest wraps the user's generation parameters
type GenerationRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
	Tone  string `json:"tone"`
	Mode  Mode   `json:"layout"`
}

// GenerationResult is a successful generation. Exactly one of Poster and
// Cards is set, matching Mode. Model is the fallback model id when the
// fallback answered and empty when the primary did.
type GenerationResult struct {
	Mode   Mode
	Poster *Poster
	Cards  []Card
	Model  string
}

type posterEnvelope struct {
	Poster *Poster `json:"poster"`
	Model  string  `json:"_model,omitempty"`
}

type cardsEnvelope struct {
	Cards []Card `json:"cards"`
	Model string `json:"_model,omitempty"`
}

// MarshalJSON renders the wire envelope: {"poster": ...} or {"cards": [...]}
// plus "_model" when the fallback answered.
func (r GenerationResult) MarshalJSON() ([]byte, error) {
	if r.Mode == ModeList {
		cards := r.Cards
		if cards == nil {
			cards = []Card{}
		}
		return json.Marshal(cardsEnvelope{Cards: cards, Model: r.Model})
	}
	return json.Marshal(posterEnvelope{Poster: r.Poster, Model: r.Model})
}
