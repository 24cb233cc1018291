package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The global init runs at most once, so a failed Init must not leave
// later Get calls with a nil logger.
func TestGetAfterFailedInit(t *testing.T) {
	err := Init(Config{Level: "not-a-level"})
	require.Error(t, err)

	l := Get()
	require.NotNil(t, l)
	l.Info("usable after failed init")

	require.NotNil(t, With())
}
