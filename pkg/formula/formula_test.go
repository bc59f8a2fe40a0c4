package formula

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testFormula = `class VoyageaiCli < Formula
  desc "VoyageAI command-line interface"
  homepage "https://www.npmjs.com/package/voyageai-cli"
  url "https://registry.npmjs.org/voyageai-cli/-/voyageai-cli-1.29.0.tgz"
  sha256 "5c3b9df1a3a3e6a4fd4e3c5d2b1a0f9e8d7c6b5a4f3e2d1c0b9a8f7e6d5c4b3a"
  license "MIT"

  # Node is the only runtime dependency.
  depends_on "node"

  def install
    system "npm", "install", *std_npm_args
    bin.install_symlink Dir["#{libexec}/bin/*"]
  end

  test do
    assert_match version.to_s, shell_output("#{bin}/voyageai --version")
  end
end
`

const (
	newURL = "https://registry.npmjs.org/voyageai-cli/-/voyageai-cli-1.30.3.tgz"
	newSHA = "c1151b2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f3de9"
)

func writeFormula(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voyageai-cli.rb")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

// TestLoad_NotFound verifies Load reports a missing formula distinctly.
func TestLoad_NotFound(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "missing.rb"))
	require.ErrorIs(t, err, ErrNotFound)
}

// TestVersion_ExtractsEmbeddedVersion checks the url pattern match.
func TestVersion_ExtractsEmbeddedVersion(t *testing.T) {
	t.Parallel()
	f, err := Load(writeFormula(t, testFormula))
	require.NoError(t, err)

	v, err := f.Version("voyageai-cli")
	require.NoError(t, err)
	require.Equal(t, "1.29.0", v)
}

// TestVersion_UnrecognizedURL rejects a url that does not embed the
// package base name.
func TestVersion_UnrecognizedURL(t *testing.T) {
	t.Parallel()
	f, err := Load(writeFormula(t, testFormula))
	require.NoError(t, err)

	_, err = f.Version("some-other-tool")
	require.ErrorIs(t, err, ErrUnrecognized)
}

// TestRewrite_ChangesOnlyAnchoredLines asserts that the url and sha256
// lines are replaced and every other byte is preserved.
func TestRewrite_ChangesOnlyAnchoredLines(t *testing.T) {
	t.Parallel()
	f, err := Load(writeFormula(t, testFormula))
	require.NoError(t, err)

	text, err := f.Rewrite(newURL, newSHA)
	require.NoError(t, err)

	oldLines := strings.Split(testFormula, "\n")
	newLines := strings.Split(text, "\n")
	require.Len(t, newLines, len(oldLines))

	for i := range oldLines {
		switch {
		case strings.Contains(oldLines[i], `url "`):
			require.Equal(t, `  url "`+newURL+`"`, newLines[i])
		case strings.Contains(oldLines[i], `sha256 "`):
			require.Equal(t, `  sha256 "`+newSHA+`"`, newLines[i])
		default:
			require.Equal(t, oldLines[i], newLines[i])
		}
	}
}

// TestRewrite_LeavesResourceBlocksAlone: only the formula's own stanza is
// rewritten; url and sha256 pins inside resource blocks belong to other
// artifacts and must survive untouched.
func TestRewrite_LeavesResourceBlocksAlone(t *testing.T) {
	t.Parallel()

	const resourceURL = "https://registry.npmjs.org/left-pad/-/left-pad-1.3.0.tgz"
	const resourceSHA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	withResource := strings.Replace(testFormula, "  depends_on \"node\"\n", `  depends_on "node"

  resource "left-pad" do
    url "`+resourceURL+`"
    sha256 "`+resourceSHA+`"
  end
`, 1)

	f, err := Load(writeFormula(t, withResource))
	require.NoError(t, err)

	text, err := f.Rewrite(newURL, newSHA)
	require.NoError(t, err)

	require.Contains(t, text, `url "`+newURL+`"`)
	require.Contains(t, text, `sha256 "`+newSHA+`"`)
	require.Contains(t, text, `url "`+resourceURL+`"`)
	require.Contains(t, text, `sha256 "`+resourceSHA+`"`)
	require.NotContains(t, text, "voyageai-cli-1.29.0.tgz")
}

// TestRewrite_MissingAnchors refuses to rewrite when either anchored
// line is absent, so url and digest can never diverge.
func TestRewrite_MissingAnchors(t *testing.T) {
	t.Parallel()
	text := strings.Replace(testFormula, "sha256", "checksum", 1)
	f, err := Load(writeFormula(t, text))
	require.NoError(t, err)

	_, err = f.Rewrite(newURL, newSHA)
	require.ErrorIs(t, err, ErrUnrecognized)
}

// TestPersist_RoundTrip writes the rewrite and verifies the re-read file.
func TestPersist_RoundTrip(t *testing.T) {
	t.Parallel()
	path := writeFormula(t, testFormula)
	f, err := Load(path)
	require.NoError(t, err)

	text, err := f.Rewrite(newURL, newSHA)
	require.NoError(t, err)
	require.NoError(t, f.Persist(text, newSHA))

	reread, err := Load(path)
	require.NoError(t, err)

	sha, err := reread.SHA256()
	require.NoError(t, err)
	require.Equal(t, newSHA, sha)

	url, err := reread.URL()
	require.NoError(t, err)
	require.Equal(t, newURL, url)
}

// TestPersist_VerificationMismatch covers a rewrite whose persisted text
// does not pin the expected digest. The corrupt file stays behind.
func TestPersist_VerificationMismatch(t *testing.T) {
	t.Parallel()
	path := writeFormula(t, testFormula)
	f, err := Load(path)
	require.NoError(t, err)

	err = f.Persist(testFormula, newSHA)
	require.ErrorIs(t, err, ErrVerificationMismatch)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}
