package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger(t *testing.T) {
	logger := GetLogger()
	require.NotNil(t, logger)
	// Same instance on repeated calls.
	assert.Same(t, logger, GetLogger())
}

func TestWithPrefix(t *testing.T) {
	base := GetLogger()
	scoped := base.WithPrefix("tree")
	require.NotNil(t, scoped)
	assert.NotSame(t, base, scoped)

	// Derived loggers log without panicking at every level.
	scoped.Error("error %d", 1)
	scoped.Warn("warn %d", 2)
	scoped.Info("info %d", 3)
	scoped.Debug("debug %d", 4)
	scoped.Trace("trace %d", 5)
}

func TestSetLevelUnknownIgnored(t *testing.T) {
	SetLevel("info")
	assert.NotPanics(t, func() { SetLevel("nonsense") })
}
