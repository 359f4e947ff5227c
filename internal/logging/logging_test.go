package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
	assert.Equal(t, context.Background(), ContextWithLogger(context.Background(), nil))
}

func TestNew(t *testing.T) {
	t.Parallel()

	var jsonOut bytes.Buffer
	New(&jsonOut, slog.LevelInfo, "json").Debug("hidden")
	New(&jsonOut, slog.LevelInfo, "json").Info("shown", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "v", entry["k"])

	var textOut bytes.Buffer
	New(&textOut, slog.LevelDebug, "text").Debug("visible")
	assert.True(t, strings.Contains(textOut.String(), "msg=visible"))
}
