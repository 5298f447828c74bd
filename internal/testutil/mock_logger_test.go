package testutil_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/OrphaMine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OrphaMine/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	assert.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)
	v, ok := messages[0].Field("key")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareBuffer(t *testing.T) {
	var logger logging.Logger = testutil.NewMockLogger()
	root := logger.(*testutil.MockLogger)

	child := logger.With(logging.String(logging.KeyRunID, "r1")).Named("x")
	child.WithError(errors.New("boom")).Warn("degraded")
	child.Warn("degraded")

	assert.Equal(t, 2, root.Count("warn", "degraded"))
	runID, ok := root.GetMessages()[0].Field(logging.KeyRunID)
	assert.True(t, ok)
	assert.Equal(t, "r1", runID)
}

//Personal.AI order the ending
