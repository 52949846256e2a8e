package observability

import (
	"strconv"
)

// Pricing constants (USD per 1K tokens, converted from provider list prices)
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	glm4Price      = 0.014
	glm4PlusPrice  = 0.007
	glm4FlashPrice = 0.0

	gemini25FlashInputPrice  = 0.0003
	gemini25FlashOutputPrice = 0.0025
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for the models this service calls
var PricingTable = map[string]ModelPricing{
	"glm-4": {
		InputPricePer1K:  glm4Price,
		OutputPricePer1K: glm4Price,
	},
	"glm-4-plus": {
		InputPricePer1K:  glm4PlusPrice,
		OutputPricePer1K: glm4PlusPrice,
	},
	"glm-4-flash": {
		InputPricePer1K:  glm4FlashPrice,
		OutputPricePer1K: glm4FlashPrice,
	},
	"gemini-2.5-flash": {
		InputPricePer1K:  gemini25FlashInputPrice,
		OutputPricePer1K: gemini25FlashOutputPrice,
	},
}

// CalculateCost returns the USD cost of one call. Unknown models cost 0.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, exists := PricingTable[model]
	if !exists {
		return 0
	}

	inputCost := (float64(inputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(outputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
