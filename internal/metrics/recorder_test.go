package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatch struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range params.MetricData {
		f.names = append(f.names, *d.MetricName)
	}
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func (f *fakeCloudWatch) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func TestRecorder_Snapshot(t *testing.T) {
	r := NewRecorder(NewSentryMetrics(), nil)
	ctx := context.Background()

	r.RecordAttempt(ctx, Attempt{Model: "glm-4", Outcome: OutcomeTimeout, Duration: time.Second})
	r.RecordAttempt(ctx, Attempt{Model: "glm-4-flash", Fallback: true, Outcome: OutcomeSuccess})
	r.RecordGeneration(ctx, "poster", 2*time.Second, true)
	r.RecordGeneration(ctx, "list", time.Second, false)

	assert.Equal(t, Snapshot{
		Generations: 2,
		Failures:    1,
		Attempts:    2,
		Fallbacks:   1,
		Timeouts:    1,
	}, r.Snapshot())
}

func TestRecorder_NilBackends(t *testing.T) {
	r := NewRecorder(nil, nil)
	assert.NotPanics(t, func() {
		r.RecordAttempt(context.Background(), Attempt{Outcome: OutcomeError})
		r.RecordGeneration(context.Background(), "poster", 0, false)
		r.RecordAPIRequest(context.Background(), "/api/chat", 200, 0)
	})
}

func TestNewClient_DisabledOutsideProduction(t *testing.T) {
	c, err := NewClient(context.Background(), "development", true)
	require.NoError(t, err)
	assert.False(t, c.enabled)

	c, err = NewClient(context.Background(), "production", false)
	require.NoError(t, err)
	assert.False(t, c.enabled)
}

func TestClient_PutMetric(t *testing.T) {
	fake := &fakeCloudWatch{}
	c := &Client{client: fake, enabled: true, environment: "production"}

	require.NoError(t, c.putMetric(context.Background(), "AttemptDuration", 12, "Milliseconds", nil))
	assert.Equal(t, []string{"AttemptDuration"}, fake.recorded())

	fake.err = errors.New("throttled")
	assert.EqualError(t, c.putMetric(context.Background(), "X", 1, "Count", nil), "throttled")
}

func TestClient_RecordAttemptSendsTokenMetrics(t *testing.T) {
	fake := &fakeCloudWatch{}
	c := &Client{client: fake, enabled: true, environment: "production"}

	c.RecordAttempt(Attempt{Model: "glm-4", Fallback: true, Outcome: OutcomeSuccess, TotalTokens: 30, InputTokens: 10, OutputTokens: 20})

	assert.Eventually(t, func() bool {
		return len(fake.recorded()) == 5
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t,
		[]string{"AttemptDuration", "FallbackAttempts", "Tokens/Input", "Tokens/Output", "Tokens/Total"},
		fake.recorded())
}
