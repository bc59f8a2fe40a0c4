package command

import (
	"io"

	"tapsync/cli"
	"tapsync/cli/debug"
	cliflags "tapsync/cli/flags"
	"tapsync/cli/version"
	"tapsync/pkg/output"
	"tapsync/pkg/progress"
	"tapsync/pkg/registry"
	"tapsync/pkg/streams"
	"tapsync/pkg/tapcfg"

	"github.com/moby/term"
	"github.com/spf13/cobra"
)

// Streams is an interface which exposes the standard input and output streams
type Streams interface {
	In() *streams.In
	Out() *streams.Out
	Err() *streams.Out
}

// Cli represents the tapsync command line client.
type Cli interface {
	Streams
	SetIn(in *streams.In)
	Apply(ops ...CLIOption) error
	Settings() (*tapcfg.Settings, error)
	RegistryClient() (registry.Client, error)
	Output() *output.Output
	Progress() *progress.Progress
}

// TapCli is an instance of the tapsync command line client.
// Instances of the client can be returned from NewTapCli.
type TapCli struct {
	in       *streams.In
	out      *streams.Out
	err      *streams.Out
	settings *tapcfg.Settings
}

// NewTapCli returns a TapCli instance with all operators applied on it.
// It applies by default the standard streams.
func NewTapCli(ops ...CLIOption) (*TapCli, error) {
	defaultOps := []CLIOption{
		WithStandardStreams(),
	}
	ops = append(defaultOps, ops...)

	cli := &TapCli{}
	if err := cli.Apply(ops...); err != nil {
		return nil, err
	}
	return cli, nil
}

// Out returns the writer used for stdout
func (c *TapCli) Out() *streams.Out {
	return c.out
}

// Err returns the writer used for stderr
func (c *TapCli) Err() *streams.Out {
	return c.err
}

// SetIn sets the reader used for stdin
func (c *TapCli) SetIn(in *streams.In) {
	c.in = in
}

// In returns the reader used for stdin
func (c *TapCli) In() *streams.In {
	return c.in
}

// ShowHelp shows the command help.
func ShowHelp(err io.Writer) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SetOut(err)
		cmd.HelpFunc()(cmd, args)
		return nil
	}
}

// Apply all the operation on the cli
func (c *TapCli) Apply(ops ...CLIOption) error {
	for _, op := range ops {
		if err := op(c); err != nil {
			return err
		}
	}
	return nil
}

// Settings resolves the tap settings from the environment once and
// reuses them for the rest of the invocation.
func (c *TapCli) Settings() (*tapcfg.Settings, error) {
	if c.settings == nil {
		settings, err := tapcfg.Resolve()
		if err != nil {
			return nil, err
		}
		c.settings = settings
	}
	return c.settings, nil
}

// RegistryClient returns a client for the configured package registry.
func (c *TapCli) RegistryClient() (registry.Client, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}

	userAgent := "tapsync/" + version.Version
	colorize := !cli.IsColorDisabled() && term.IsTerminal(c.err.FD())

	return registry.New(settings.Registry, userAgent, colorize, c.err)
}

// Output returns a Plain/Fancy writer pair over the standard streams.
func (c *TapCli) Output() *output.Output {
	return output.New(c.out, c.err)
}

// Progress returns a progress indicator appropriate for the error stream.
func (c *TapCli) Progress() *progress.Progress {
	return &progress.Progress{
		ProgressColorEnabled:     c.err.IsColorEnabled(),
		ProgressIndicatorEnabled: c.err.IsTerminal(),
	}
}

// Initialize runs initialization that must happen after command line
// flags are parsed.
func (c *TapCli) Initialize(opts *cliflags.ClientOptions, ops ...CLIOption) error {
	for _, o := range ops {
		if err := o(c); err != nil {
			return err
		}
	}
	cliflags.SetLogLevel(opts.LogLevel)

	if opts.Debug {
		debug.Enable()
	}

	return nil
}
