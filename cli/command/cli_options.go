package command

import (
	"io"

	"tapsync/pkg/streams"
	"tapsync/pkg/tapcfg"

	"github.com/moby/term"
)

// CLIOption is a functional argument to apply options to a [TapCli]. These
// options can be passed to [NewTapCli] to initialize a new CLI, or
// applied with [TapCli.Initialize] or [TapCli.Apply].
type CLIOption func(cli *TapCli) error

// WithStandardStreams sets a cli in, out and err streams with the standard streams.
func WithStandardStreams() CLIOption {
	return func(cli *TapCli) error {
		// Set terminal emulation based on platform as required.
		stdin, stdout, stderr := term.StdStreams()
		cli.in = streams.NewIn(stdin)
		cli.out = streams.NewOut(stdout)
		cli.err = streams.NewOut(stderr)
		return nil
	}
}

// WithCombinedStreams uses the same stream for the output and error streams.
func WithCombinedStreams(combined io.Writer) CLIOption {
	return func(cli *TapCli) error {
		s := streams.NewOut(combined)
		cli.out = s
		cli.err = s
		return nil
	}
}

// WithInputStream sets a cli input stream.
func WithInputStream(in io.ReadCloser) CLIOption {
	return func(cli *TapCli) error {
		cli.in = streams.NewIn(in)
		return nil
	}
}

// WithOutputStream sets a cli output stream.
func WithOutputStream(out io.Writer) CLIOption {
	return func(cli *TapCli) error {
		cli.out = streams.NewOut(out)
		return nil
	}
}

// WithErrorStream sets a cli error stream.
func WithErrorStream(err io.Writer) CLIOption {
	return func(cli *TapCli) error {
		cli.err = streams.NewOut(err)
		return nil
	}
}

// WithSettings pins resolved settings, bypassing environment resolution.
func WithSettings(settings *tapcfg.Settings) CLIOption {
	return func(cli *TapCli) error {
		cli.settings = settings
		return nil
	}
}
