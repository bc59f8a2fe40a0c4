package main

import (
	"fmt"
	"os"

	"tapsync/cli"
	"tapsync/cli/command"
	"tapsync/cli/command/commands"
	"tapsync/cli/debug"
	"tapsync/cli/version"

	"github.com/spf13/cobra"
)

func main() {
	tapCli, err := command.NewTapCli()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := newTapsyncCommand(tapCli)

	if err := cmd.Execute(); err != nil {
		if debug.IsEnabled() {
			fmt.Fprintf(tapCli.Err(), "%+v\n", err)
		} else {
			fmt.Fprintln(tapCli.Err(), err)
		}
		os.Exit(1)
	}
}

func newTapsyncCommand(tapCli *command.TapCli) *cobra.Command {
	cmd := &cobra.Command{
		Use:              "tapsync [OPTIONS] COMMAND [ARG...]",
		Short:            "Keep a Homebrew tap formula in sync with the package registry",
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("tapsync: unknown command: tapsync %s\n\nRun 'tapsync --help' for more information on a command", args[0])
		},
		Version: version.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   false,
			HiddenDefaultCmd:    true,
			DisableDescriptions: true,
		},
	}

	opts, helpCmd := cli.SetupRootCommand(cmd)
	cmd.AddCommand(helpCmd)

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		return tapCli.Initialize(opts)
	}

	commands.AddCommands(cmd, tapCli)
	cli.DisableFlagsInUseLine(cmd)

	return cmd
}
