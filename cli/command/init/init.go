package init

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tapsync/cli"
	"tapsync/cli/command"
	"tapsync/pkg/registry"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// placeholderVersion seeds the url line of a fresh formula so the first
// update pass has an anchor to rewrite.
const (
	placeholderVersion = "0.0.0"
	placeholderSHA     = "0000000000000000000000000000000000000000000000000000000000000000"
)

type initOptions struct {
	yes bool
}

type prompt struct {
	Msg     string
	Default string
}

type promptField struct {
	Key    string
	Prompt prompt
}

func NewInitCommand(tapCli command.Cli) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Bootstrap the tap directory layout",
		Args:  cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), tapCli, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.yes, "yes", "y", false, "Skip prompts and use default values")

	return cmd
}

func runInit(ctx context.Context, tapCli command.Cli, opts initOptions) error {
	settings, err := tapCli.Settings()
	if err != nil {
		return err
	}

	name := settings.Package
	desc := "Command-line interface for " + settings.Base()
	homepage := "https://www.npmjs.com/package/" + settings.Package

	// If not auto-confirmed, prompt the user for values
	if !opts.yes {
		prompts := []promptField{
			{"name", prompt{"package name", name}},
			{"desc", prompt{"description", desc}},
			{"homepage", prompt{"homepage", homepage}},
		}

		for _, pf := range prompts {
			val, err := command.PromptForInput(ctx, tapCli.In(), tapCli.Out(), fmt.Sprintf("%s (%s): ", pf.Prompt.Msg, pf.Prompt.Default))
			if err != nil {
				return err
			}
			if val == "" {
				val = pf.Prompt.Default
			}

			switch pf.Key {
			case "name":
				name = val
			case "desc":
				desc = val
			case "homepage":
				homepage = val
			}
		}
	}

	formulaDir := filepath.Join(settings.TapDir, "Formula")
	formulaPath := filepath.Join(formulaDir, settings.Formula)

	if _, err := os.Stat(formulaPath); err == nil {
		// Never overwrite silently: --yes accepts defaults for the
		// prompts above, not destruction of an existing manifest.
		if opts.yes {
			return errors.Errorf("formula already exists at %s", formulaPath)
		}

		ok, err := command.PromptForConfirmation(ctx, tapCli.In(), tapCli.Out(),
			fmt.Sprintf("Formula already exists at %s. Overwrite?", formulaPath))
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("formula already exists at %s", formulaPath)
		}
	}

	if err := os.MkdirAll(formulaDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create tap layout")
	}

	base := settings.Base()
	text := renderFormula(name, base, desc, homepage, registry.TarballURL(settings.Registry, name, placeholderVersion))

	if err := os.WriteFile(formulaPath, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", formulaPath)
	}

	fmt.Fprint(tapCli.Out(), "formula created at ", formulaPath, "\n")

	return nil
}

// renderFormula produces the initial manifest. The url and sha256 lines
// carry placeholders that the first update pass replaces together.
func renderFormula(name, base, desc, homepage, tarballURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "class %s < Formula\n", className(base))
	fmt.Fprintf(&b, "  desc %q\n", desc)
	fmt.Fprintf(&b, "  homepage %q\n", homepage)
	fmt.Fprintf(&b, "  url %q\n", tarballURL)
	fmt.Fprintf(&b, "  sha256 %q\n", placeholderSHA)
	fmt.Fprintf(&b, "  license \"MIT\"\n")
	b.WriteString("\n")
	b.WriteString("  depends_on \"node\"\n")
	b.WriteString("\n")
	b.WriteString("  def install\n")
	b.WriteString("    system \"npm\", \"install\", *std_npm_args\n")
	b.WriteString("    bin.install_symlink Dir[\"#{libexec}/bin/*\"]\n")
	b.WriteString("  end\n")
	b.WriteString("\n")
	b.WriteString("  test do\n")
	fmt.Fprintf(&b, "    assert_match version.to_s, shell_output(\"#{bin}/%s --version\")\n", base)
	b.WriteString("  end\n")
	b.WriteString("end\n")

	return b.String()
}

// className converts a package base name to the Ruby class name Homebrew
// expects, e.g. voyageai-cli -> VoyageaiCli.
func className(base string) string {
	parts := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})

	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}

	return b.String()
}
