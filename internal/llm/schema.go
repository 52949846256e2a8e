package llm

import (
	"github.com/Conceptual-Machines/poster-api/internal/models"
	"google.golang.org/genai"
)

func stringSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func stringArraySchema(maxItems int64) *genai.Schema {
	return &genai.Schema{
		Type:     genai.TypeArray,
		Items:    stringSchema(),
		MaxItems: genai.Ptr(maxItems),
	}
}

// posterOutputSchema mirrors the poster system prompt for providers that
// enforce structured output natively
func posterOutputSchema() *genai.Schema {
	side := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":   stringSchema(),
			"bullets": stringArraySchema(models.MaxBullets),
		},
		Required: []string{"title", "bullets"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"poster": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":    stringSchema(),
					"subtitle": stringSchema(),
					"heroIcon": stringSchema(),
					"sections": {
						Type:     genai.TypeArray,
						MaxItems: genai.Ptr(int64(models.MaxSections)),
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"icon":    stringSchema(),
								"heading": stringSchema(),
								"body":    stringSchema(),
							},
							Required: []string{"heading", "body"},
						},
					},
					"compare": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"left":  side,
							"right": side,
						},
					},
					"grid": {
						Type:     genai.TypeArray,
						MaxItems: genai.Ptr(int64(models.MaxGrid)),
						Items: &genai.Schema{
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"icon":  stringSchema(),
								"title": stringSchema(),
								"text":  stringSchema(),
							},
							Required: []string{"title", "text"},
						},
					},
					"takeaway": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"summary":  stringSchema(),
							"question": stringSchema(),
						},
						Required: []string{"summary"},
					},
				},
				Required: []string{"title", "sections"},
			},
		},
		Required: []string{"poster"},
	}
}

// cardsOutputSchema mirrors the card list system prompt
func cardsOutputSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"cards": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       stringSchema(),
						"description": stringSchema(),
						"tags":        stringArraySchema(models.MaxTags),
						"icon":        stringSchema(),
					},
					Required: []string{"title", "description", "tags", "icon"},
				},
			},
		},
		Required: []string{"cards"},
	}
}

// OutputSchema returns the response schema for a mode
func OutputSchema(mode models.Mode) *genai.Schema {
	if mode == models.ModeList {
		return cardsOutputSchema()
	}
	return posterOutputSchema()
}
