package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultsToStandard(t *testing.T) {
	assert.Equal(t, logrus.StandardLogger(), Logger(context.Background()))
	_, ok := OutputLogger(context.Background())
	assert.False(t, ok)
}

func TestWithLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ctx := WithLogger(context.Background(), logger.WithField("run", "1"))
	Logger(ctx).Warn("careful")

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "careful", hook.LastEntry().Message)
	assert.Equal(t, "1", hook.LastEntry().Data["run"])
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info")
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = New(&buf, "loud")
	assert.ErrorContains(t, err, `invalid log level "loud"`)
}
