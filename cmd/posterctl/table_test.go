package main

import (
	"testing"

	"github.com/Conceptual-Machines/poster-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderTableEmptyHeaders(t *testing.T) {
	assert.Empty(t, renderTable(nil, [][]string{{"x"}}))
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}})
	assert.Contains(t, out, "only")
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "B")
}

func TestRenderResultCards(t *testing.T) {
	out := renderResult(&models.GenerationResult{
		Mode: models.ModeList,
		Cards: []models.Card{
			{Title: "岩漿", Description: "地底的熔岩", Tags: []string{"地質", "高溫"}, Icon: "🌋"},
		},
		Model: "glm-4-flash",
	})

	assert.Contains(t, out, "岩漿")
	assert.Contains(t, out, "地質, 高溫")
	assert.Contains(t, out, "fallback model glm-4-flash")
}

func TestRenderResultPoster(t *testing.T) {
	out := renderResult(&models.GenerationResult{
		Mode: models.ModePoster,
		Poster: &models.Poster{
			Title:    "火山",
			Subtitle: "地球的煙囪",
			HeroIcon: "🌋",
			Sections: []models.Section{{Icon: "📌", Heading: "成因", Body: "板塊運動"}},
			Compare: &models.Compare{
				Left:  models.CompareSide{Title: "活火山", Bullets: []string{"會噴發"}},
				Right: models.CompareSide{Title: "死火山", Bullets: []string{"不再噴發"}},
			},
			Grid:     []models.GridItem{{Icon: "✨", Title: "溫度", Text: "很熱"}},
			Takeaway: &models.Takeaway{Summary: "火山很重要", Question: "你見過火山嗎？"},
		},
	})

	assert.Contains(t, out, "火山")
	assert.Contains(t, out, "板塊運動")
	assert.Contains(t, out, "死火山")
	assert.Contains(t, out, "很熱")
	assert.Contains(t, out, "你見過火山嗎？")
	assert.NotContains(t, out, "fallback model")
}
