package streams

import (
	"bytes"
	"testing"

	"github.com/morikuni/aec"
	"github.com/stretchr/testify/require"
)

// TestNewOut_BufferHasNoColor: a plain writer is not a terminal and gets
// no color codes.
func TestNewOut_BufferHasNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")

	var buf bytes.Buffer
	out := NewOut(&buf)

	require.False(t, out.IsTerminal())
	require.False(t, out.IsColorEnabled())

	out.With(aec.GreenF).Println("done")
	require.Equal(t, "done\n", buf.String())
}

// TestNewOut_ForcedColor: CLICOLOR_FORCE overrides terminal detection and
// styled output carries the escape codes.
func TestNewOut_ForcedColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")

	var buf bytes.Buffer
	out := NewOut(&buf)

	require.True(t, out.IsColorEnabled())

	out.With(aec.Bold, aec.GreenF).Printf("%s", "done")
	require.Contains(t, buf.String(), "done")
	require.Contains(t, buf.String(), "\x1b[")
}

// TestNewOut_NoColorWins: NO_COLOR beats CLICOLOR_FORCE.
func TestNewOut_NoColorWins(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "1")

	var buf bytes.Buffer
	out := NewOut(&buf)

	require.False(t, out.IsColorEnabled())

	out.With(aec.GreenF).Print("done")
	require.Equal(t, "done", buf.String())
}
