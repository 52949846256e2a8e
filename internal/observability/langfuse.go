package observability

import (
	"context"
	"os"
	"time"

	"github.com/Conceptual-Machines/poster-api/internal/config"
	"github.com/Conceptual-Machines/poster-api/internal/logger"
	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
)

const (
	levelDefault = "DEFAULT"
	levelError   = "ERROR"
)

// LangfuseClient wraps the Langfuse client with our configuration.
// A disabled client hands out no-op traces.
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
}

// InitializeLangfuse creates the Langfuse client. The SDK reads its
// credentials from LANGFUSE_* environment variables, so values that came
// from the config file are exported first.
func InitializeLangfuse(ctx context.Context, cfg *config.Config) *LangfuseClient {
	obs := cfg.Observability
	if !obs.LangfuseEnabled || obs.LangfuseSecretKey == "" {
		logger.Info("Langfuse disabled", logger.Fields{
			"enabled":        obs.LangfuseEnabled,
			"secret_key_set": obs.LangfuseSecretKey != "",
		})
		return &LangfuseClient{enabled: false}
	}

	exportEnv("LANGFUSE_HOST", obs.LangfuseHost)
	exportEnv("LANGFUSE_PUBLIC_KEY", obs.LangfusePublicKey)
	exportEnv("LANGFUSE_SECRET_KEY", obs.LangfuseSecretKey)

	lf := langfuse.New(ctx)
	logger.Info("Langfuse initialized", logger.Fields{"host": obs.LangfuseHost})
	return &LangfuseClient{client: lf, enabled: true}
}

func exportEnv(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		_ = os.Setenv(key, value)
	}
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Flush sends all queued events. Called on shutdown.
func (c *LangfuseClient) Flush(ctx context.Context) {
	if c.IsEnabled() {
		c.client.Flush(ctx)
	}
}

// StartTrace starts a new trace in Langfuse
func (c *LangfuseClient) StartTrace(name string, input any, metadata map[string]interface{}) *Trace {
	if !c.IsEnabled() {
		return &Trace{}
	}

	trace, err := c.client.Trace(&model.Trace{
		Name:     name,
		Input:    input,
		Metadata: metadata,
	})
	if err != nil {
		logger.Warn("Failed to create Langfuse trace", logger.Fields{"error": err.Error()})
		return &Trace{}
	}

	return &Trace{trace: trace, enabled: true, client: c.client}
}

// Trace represents a Langfuse trace
type Trace struct {
	trace   *model.Trace
	enabled bool
	client  *langfuse.Langfuse
}

// ID returns the trace id, empty when tracing is off
func (t *Trace) ID() string {
	if !t.enabled {
		return ""
	}
	return t.trace.ID
}

// Generation creates a new generation span within the trace
func (t *Trace) Generation(name, modelName string, input any, metadata map[string]interface{}) *Generation {
	if !t.enabled {
		return &Generation{}
	}

	now := time.Now()
	gen, err := t.client.Generation(&model.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		Model:     modelName,
		StartTime: &now,
		Input:     input,
		Metadata:  metadata,
	}, nil)
	if err != nil {
		logger.Warn("Failed to create Langfuse generation", logger.Fields{"error": err.Error()})
		return &Generation{}
	}

	return &Generation{generation: gen, enabled: true, client: t.client}
}

// End records the trace output. The trace is upserted by id.
func (t *Trace) End(output any) {
	if !t.enabled {
		return
	}
	t.trace.Output = output
	if _, err := t.client.Trace(t.trace); err != nil {
		logger.Warn("Failed to update Langfuse trace", logger.Fields{"error": err.Error()})
	}
}

// Generation represents a Langfuse generation span
type Generation struct {
	generation *model.Generation
	enabled    bool
	client     *langfuse.Langfuse
}

// Output sets the output for the generation
func (g *Generation) Output(output any) {
	if g.enabled {
		g.generation.Output = output
	}
}

// Usage sets the token usage and cost for the generation
func (g *Generation) Usage(usage map[string]int) {
	if g.enabled {
		g.generation.Usage = convertUsageMap(g.generation.Model, usage)
	}
}

// Fail marks the generation as failed
func (g *Generation) Fail(err error) {
	if g.enabled && err != nil {
		g.generation.Level = model.ObservationLevel(levelError)
		g.generation.StatusMessage = err.Error()
	}
}

// Finish completes the generation and queues it for sending
func (g *Generation) Finish() {
	if !g.enabled {
		return
	}
	now := time.Now()
	g.generation.EndTime = &now
	if g.generation.Level == "" {
		g.generation.Level = model.ObservationLevel(levelDefault)
	}
	if _, err := g.client.GenerationEnd(g.generation); err != nil {
		logger.Warn("Failed to end Langfuse generation", logger.Fields{"error": err.Error()})
	}
}

// convertUsageMap converts a usage map to model.Usage
func convertUsageMap(modelName string, usage map[string]int) model.Usage {
	result := model.Usage{
		Unit:   model.ModelUsageUnitTokens,
		Input:  usage["input_tokens"],
		Output: usage["output_tokens"],
		Total:  usage["total_tokens"],
	}
	result.TotalCost = CalculateCost(modelName, result.Input, result.Output)
	return result
}
