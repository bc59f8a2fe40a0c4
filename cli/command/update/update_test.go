package update

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tapsync/cli/command"
	"tapsync/pkg/tapcfg"

	"github.com/stretchr/testify/require"
)

const pinnedFormula = `class VoyageaiCli < Formula
  desc "VoyageAI command-line interface"
  homepage "https://www.npmjs.com/package/voyageai-cli"
  url "https://registry.npmjs.org/voyageai-cli/-/voyageai-cli-1.29.0.tgz"
  sha256 "5c3b9df1a3a3e6a4fd4e3c5d2b1a0f9e8d7c6b5a4f3e2d1c0b9a8f7e6d5c4b3a"
  license "MIT"
end
`

func testSetup(t *testing.T, latest string) (command.Cli, *tapcfg.Settings, *bytes.Buffer) {
	t.Helper()

	tarball := make([]byte, 4096)

	var serverURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/voyageai-cli/latest":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"name":    "voyageai-cli",
				"version": latest,
				"dist": map[string]any{
					"tarball": serverURL + "/voyageai-cli/-/voyageai-cli-" + latest + ".tgz",
				},
			})
		default:
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(tarball)
		}
	}))
	t.Cleanup(server.Close)
	serverURL = server.URL

	tapDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tapDir, "Formula"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tapDir, "Formula", "voyageai-cli.rb"), []byte(pinnedFormula), 0o644))

	settings := &tapcfg.Settings{
		Registry: server.URL,
		Package:  "voyageai-cli",
		Formula:  "voyageai-cli.rb",
		Remote:   "git@example.com:voyage/homebrew-tap.git",
		TapDir:   tapDir,
	}

	var out bytes.Buffer
	tapCli, err := command.NewTapCli(
		command.WithCombinedStreams(&out),
		command.WithSettings(settings),
	)
	require.NoError(t, err)

	return tapCli, settings, &out
}

// TestUpdate_DryRunTouchesNothing: with --dry-run no file changes and no
// git command runs, regardless of --push.
func TestUpdate_DryRunTouchesNothing(t *testing.T) {
	tapCli, settings, out := testSetup(t, "1.30.3")

	before, err := os.ReadFile(settings.FormulaPath())
	require.NoError(t, err)

	cmd := NewUpdateCommand(tapCli)
	cmd.SetArgs([]string{"--dry-run", "--push"})
	cmd.SetOut(out)
	cmd.SetErr(out)
	require.NoError(t, cmd.Execute())

	after, err := os.ReadFile(settings.FormulaPath())
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
	require.Contains(t, out.String(), "dry run")
	require.Contains(t, out.String(), "voyageai-cli-1.30.3.tgz")
}

// TestUpdate_RewritesFormula runs a plain update and checks the result.
func TestUpdate_RewritesFormula(t *testing.T) {
	tapCli, settings, out := testSetup(t, "1.30.3")

	cmd := NewUpdateCommand(tapCli)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	after, err := os.ReadFile(settings.FormulaPath())
	require.NoError(t, err)
	require.Contains(t, string(after), "voyageai-cli-1.30.3.tgz")
	require.NotContains(t, string(after), "voyageai-cli-1.29.0.tgz")
	require.Contains(t, out.String(), "updated")
}

// TestUpdate_Noop exits zero without touching the formula when it already
// pins the latest release.
func TestUpdate_Noop(t *testing.T) {
	tapCli, settings, out := testSetup(t, "1.29.0")

	before, err := os.ReadFile(settings.FormulaPath())
	require.NoError(t, err)

	cmd := NewUpdateCommand(tapCli)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	after, err := os.ReadFile(settings.FormulaPath())
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
	require.Contains(t, out.String(), "nothing to do")
}

// TestUpdate_PinnedVersion constructs the tarball URL without querying
// the latest endpoint.
func TestUpdate_PinnedVersion(t *testing.T) {
	tapCli, settings, _ := testSetup(t, "1.30.3")

	cmd := NewUpdateCommand(tapCli)
	cmd.SetArgs([]string{"--version", "1.31.0"})
	require.NoError(t, cmd.Execute())

	after, err := os.ReadFile(settings.FormulaPath())
	require.NoError(t, err)
	require.Contains(t, string(after), "/voyageai-cli/-/voyageai-cli-1.31.0.tgz")
}
