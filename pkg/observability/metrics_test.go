package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hackeddesign/claire/pkg/domain"
	"github.com/hackeddesign/claire/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	ctx := context.Background()
	hooks := m.Hooks()
	hooks.OnDialogBegin(ctx, &domain.DialogEvent{DialogID: "enquiryDialog", Depth: 1})
	hooks.OnDialogBegin(ctx, &domain.DialogEvent{DialogID: "namePrompt", Depth: 2})
	hooks.OnPromptRejected(ctx, &domain.PromptEvent{PromptID: "namePrompt"})
	hooks.OnPromptRejected(ctx, &domain.PromptEvent{PromptID: "namePrompt"})
	hooks.OnDialogEnd(ctx, &domain.DialogEvent{DialogID: "namePrompt", Depth: 1})
	hooks.OnTurnCommitted(ctx, &domain.TurnEvent{Activities: 2})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DialogsBegun.WithLabelValues("enquiryDialog")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PromptsRejected.WithLabelValues("namePrompt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DialogsEnded.WithLabelValues("namePrompt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveDepth.WithLabelValues("namePrompt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TurnsCommitted))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TurnActivities))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Handler(t *testing.T) {
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	m.Hooks().OnTurnCommitted(context.Background(), &domain.TurnEvent{Activities: 1})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "claire_turns_committed_total 1")
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hooks := observability.LogHooks(logger)
	hooks.OnDialogBegin(context.Background(), &domain.DialogEvent{
		EventBase: domain.EventBase{ConversationID: "c1"},
		DialogID:  "enquiryDialog",
		Depth:     1,
	})

	line := buf.String()
	assert.True(t, strings.Contains(line, "dialog_begin"))
	assert.Contains(t, line, "conversation_id=c1")
	assert.Contains(t, line, "dialog_id=enquiryDialog")
}
