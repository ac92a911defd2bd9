package logger_test

import (
	"context"
	"testing"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	l, _ := logger.NewObserved("debug")
	ctx := logger.WithContext(context.Background(), l)

	assert.Same(t, l, logger.FromContext(ctx))
}

func TestFromContext_NoLogger_ReturnsSharedFallback(t *testing.T) {
	t.Parallel()

	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())

	require.NotNil(t, a)
	assert.Same(t, a, b)

	// Must not panic even though debug/info are filtered.
	a.Debug("debug message")
	a.Warn("message with field", logger.String("key", "value"))
}

func TestNewObserved_RecordsFields(t *testing.T) {
	t.Parallel()

	l, logs := logger.NewObserved("info")
	l.With(logger.Cohort("crown")).Info("pipeline finished", logger.Int("clusters", 3))
	l.Debug("filtered out")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pipeline finished", entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "crown", ctx["cohort"])
	assert.EqualValues(t, 3, ctx["clusters"])
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	require.NotNil(t, l)
}
