package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstSkipsBlankValues(t *testing.T) {
	t.Setenv("BM_TEST_A", "  ")
	t.Setenv("BM_TEST_B", "8080")
	require.Equal(t, "8080", First("BM_TEST_A", "BM_TEST_B"))
	require.Equal(t, "", First("BM_TEST_UNSET"))
}

func TestGetFallback(t *testing.T) {
	t.Setenv("BM_TEST_A", "")
	require.Equal(t, "local", Get("BM_TEST_A", "local"))
	t.Setenv("BM_TEST_A", "web.1")
	require.Equal(t, "web.1", Get("BM_TEST_A", "local"))
}
