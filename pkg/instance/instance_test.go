package instance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIDPrefersExplicitID(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("BANANAMEOW_INSTANCE_ID", "api-blue")
	require.Equal(t, "api-blue", GetID())
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv("BANANAMEOW_INSTANCE_ID", "")
	t.Setenv("DYNO", "web.2")
	require.Equal(t, "web.2", GetID())

	t.Setenv("DYNO", "")
	t.Setenv("HOSTNAME", "")
	require.Equal(t, "local", GetID())
}
