package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/metrics"
	"github.com/aretw0/arbor/pkg/domain"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHooksFeedCounters(t *testing.T) {
	m := metrics.New()
	hooks := m.Hooks()
	ctx := context.Background()
	ev := &domain.StepEvent{Entry: domain.EntryPoll, Kind: domain.KindSelect}

	hooks.OnStepRendered(ctx, ev)
	hooks.OnStepRendered(ctx, ev)
	hooks.OnAnswered(ctx, ev)
	hooks.OnBack(ctx, ev)
	hooks.OnCompleted(ctx, ev)

	body := scrape(t, m)
	assert.Contains(t, body, `arbor_steps_rendered_total{entry="poll",kind="select"} 2`)
	assert.Contains(t, body, `arbor_answers_total{entry="poll",kind="select"} 1`)
	assert.Contains(t, body, `arbor_back_navigations_total{entry="poll"} 1`)
	assert.Contains(t, body, `arbor_flows_completed_total{entry="poll"} 1`)
}

func TestObserveUpdate(t *testing.T) {
	m := metrics.New()
	m.ObserveUpdate("callback", 20*time.Millisecond, nil)
	m.ObserveUpdate("text", time.Millisecond, errors.New("boom"))

	body := scrape(t, m)
	assert.Contains(t, body, `arbor_update_duration_seconds_count{type="callback"} 1`)
	assert.Contains(t, body, `arbor_update_errors_total{type="text"} 1`)
	assert.NotContains(t, body, `arbor_update_errors_total{type="callback"}`)
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.ObserveUpdate("text", time.Millisecond, nil)
	assert.NotContains(t, scrape(t, b), `arbor_update_duration_seconds_count{type="text"}`)
}
