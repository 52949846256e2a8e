package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Conceptual-Machines/poster-api/internal/logger"
	"github.com/Conceptual-Machines/poster-api/internal/models"
	"github.com/gin-gonic/gin"
)

// StreamEvent is a delta, error or done event of the card stream
type StreamEvent struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// ChatStream streams a card list as server-sent events: raw deltas as they
// arrive, then the normalized result or an error, then done.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var body ChatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidJSONBody})
		return
	}

	body.Layout = string(models.ModeList)
	req, err := body.toGenerationRequest()
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	result, err := h.generator.StreamCards(c.Request.Context(), req, func(delta string) error {
		return writeEvent(c, StreamEvent{Type: eventDelta, Content: delta})
	})
	if err != nil {
		fields := logger.WithContext(c)
		fields["error"] = err.Error()
		logger.Warn("Card stream ended with error", fields)
		_ = writeEvent(c, StreamEvent{Type: eventError, Message: messageFor(err)})
	} else {
		cards := result.Cards
		if cards == nil {
			cards = []models.Card{}
		}
		// built as a map so that an empty list is still sent as "cards": []
		_ = writeEvent(c, gin.H{"type": eventResult, "cards": cards})
	}
	_ = writeEvent(c, StreamEvent{Type: eventDone})
}

func writeEvent(c *gin.Context, event any) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", eventJSON); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	c.Writer.Flush()
	return nil
}
