package services

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/poster-api/internal/models"
)

// Poster defaults
const (
	DefaultPosterTitle    = "知識小海報"
	DefaultHeroIcon       = "🎓"
	DefaultSectionIcon    = "📌"
	DefaultSectionHeading = "重點"
	DefaultGridIcon       = "✨"
	DefaultCardIcon       = "✨"
)

var posterKeys = []string{"title", "subtitle", "heroIcon", "sections", "grid", "compare", "takeaway"}

// Normalize coerces a parsed model object into the response shape of mode.
// It returns *ShapeError when the object cannot be a poster or card list.
func Normalize(mode models.Mode, parsed map[string]any) (*models.GenerationResult, error) {
	if mode == models.ModeList {
		cards, err := normalizeCards(parsed)
		if err != nil {
			return nil, err
		}
		return &models.GenerationResult{Mode: models.ModeList, Cards: cards}, nil
	}

	poster, err := normalizePoster(parsed)
	if err != nil {
		return nil, err
	}
	return &models.GenerationResult{Mode: models.ModePoster, Poster: poster}, nil
}

func normalizePoster(parsed map[string]any) (*models.Poster, error) {
	candidate := parsed
	if inner, ok := parsed["poster"].(map[string]any); ok {
		candidate = inner
	}
	if !hasAnyKey(candidate, posterKeys) {
		return nil, &ShapeError{Mode: models.ModePoster, Reason: "no poster fields"}
	}

	poster := &models.Poster{
		Title:    stringOr(candidate["title"], DefaultPosterTitle),
		Subtitle: stringOr(candidate["subtitle"], ""),
		HeroIcon: stringOr(candidate["heroIcon"], DefaultHeroIcon),
		Sections: []models.Section{},
		Grid:     []models.GridItem{},
	}

	for _, obj := range objects(candidate["sections"], models.MaxSections) {
		poster.Sections = append(poster.Sections, models.Section{
			Icon:    stringOr(obj["icon"], DefaultSectionIcon),
			Heading: stringOr(obj["heading"], DefaultSectionHeading),
			Body:    stringOr(obj["body"], ""),
		})
	}

	for _, obj := range objects(candidate["grid"], models.MaxGrid) {
		poster.Grid = append(poster.Grid, models.GridItem{
			Icon:  stringOr(obj["icon"], DefaultGridIcon),
			Title: stringOr(obj["title"], ""),
			Text:  stringOr(obj["text"], ""),
		})
	}

	if compare, ok := candidate["compare"].(map[string]any); ok {
		left, leftOK := compare["left"].(map[string]any)
		right, rightOK := compare["right"].(map[string]any)
		if leftOK && rightOK {
			poster.Compare = &models.Compare{
				Left:  compareSide(left),
				Right: compareSide(right),
			}
		}
	}

	if takeaway, ok := candidate["takeaway"].(map[string]any); ok {
		if summary := stringOr(takeaway["summary"], ""); strings.TrimSpace(summary) != "" {
			poster.Takeaway = &models.Takeaway{
				Summary:  summary,
				Question: stringOr(takeaway["question"], ""),
			}
		}
	}

	return poster, nil
}

func compareSide(obj map[string]any) models.CompareSide {
	return models.CompareSide{
		Title:   stringOr(obj["title"], ""),
		Bullets: stringList(obj["bullets"], models.MaxBullets),
	}
}

func normalizeCards(parsed map[string]any) ([]models.Card, error) {
	raw, ok := parsed["cards"].([]any)
	if !ok {
		return nil, &ShapeError{Mode: models.ModeList, Reason: "cards is not an array"}
	}

	cards := make([]models.Card, 0, len(raw))
	for _, obj := range objects(raw, len(raw)) {
		cards = append(cards, models.Card{
			Title:       stringOr(obj["title"], ""),
			Description: stringOr(obj["description"], ""),
			Tags:        stringList(obj["tags"], models.MaxTags),
			Icon:        stringOr(obj["icon"], DefaultCardIcon),
		})
	}
	return cards, nil
}

// objects returns up to limit object elements of v; other elements are skipped
func objects(v any, limit int) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, min(len(arr), limit))
	for _, el := range arr {
		if len(out) == limit {
			break
		}
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// stringList returns up to limit string-coercible elements of v
func stringList(v any, limit int) []string {
	out := []string{}
	arr, ok := v.([]any)
	if !ok {
		return out
	}
	for _, el := range arr {
		if len(out) == limit {
			break
		}
		if s, ok := coerceString(el); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringOr coerces v to a string, using def for missing, blank or
// non-scalar values
func stringOr(v any, def string) string {
	s, ok := coerceString(v)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func hasAnyKey(obj map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}
