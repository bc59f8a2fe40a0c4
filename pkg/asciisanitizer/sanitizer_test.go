package asciisanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/transform"
)

// TestTransform_ReplacesControlCharacters maps C0 bytes to their control
// pictures while whitespace survives.
func TestTransform_ReplacesControlCharacters(t *testing.T) {
	t.Parallel()

	in := "plain\ttext\nwith\x1b[31mescape\x07"
	out, _, err := transform.String(&Sanitizer{}, in)
	require.NoError(t, err)
	require.Equal(t, "plain\ttext\nwith␛[31mescape␇", out)
}

// TestTransform_PassesThroughCleanText leaves ordinary UTF-8 untouched.
func TestTransform_PassesThroughCleanText(t *testing.T) {
	t.Parallel()

	in := `{"version":"1.30.3","note":"käse"}`
	out, _, err := transform.String(&Sanitizer{}, in)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

// TestTransform_LongInput exercises the short-destination path.
func TestTransform_LongInput(t *testing.T) {
	t.Parallel()

	in := strings.Repeat("\x01", 10000)
	out, _, err := transform.String(&Sanitizer{}, in)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("␁", 10000), out)
}
