package services

import (
	"strings"
	"unicode/utf8"

	"github.com/Conceptual-Machines/poster-api/internal/models"
)

// NewGenerationRequest validates raw input and applies defaults.
// A count of 0 or less selects the mode's default; larger values are
// clamped to models.MaxCount. An empty tone selects models.DefaultTone.
func NewGenerationRequest(topic, tone, layout string, count int) (models.GenerationRequest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return models.GenerationRequest{}, &ValidationError{Field: "topic", Message: "is required"}
	}
	if utf8.RuneCountInString(topic) > models.MaxTopicRunes {
		return models.GenerationRequest{}, &ValidationError{Field: "topic", Message: "is too long"}
	}

	mode := models.ParseMode(layout)
	switch {
	case count <= 0:
		count = mode.DefaultCount()
	case count > models.MaxCount:
		count = models.MaxCount
	}

	if strings.TrimSpace(tone) == "" {
		tone = models.DefaultTone
	}

	return models.GenerationRequest{
		Topic: topic,
		Count: count,
		Tone:  tone,
		Mode:  mode,
	}, nil
}

// CoerceText turns a decoded JSON scalar into text. Numbers and booleans
// are formatted; null, objects and arrays yield "".
func CoerceText(v any) string {
	s, _ := coerceString(v)
	return s
}
