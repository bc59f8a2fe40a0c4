package version

import (
	"fmt"
	"runtime"

	"tapsync/cli"
	"tapsync/cli/command"
	cliversion "tapsync/cli/version"

	"github.com/morikuni/aec"
	"github.com/spf13/cobra"
)

func NewVersionCommand(tapCli command.Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the tapsync version information",
		Args:  cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(tapCli)
		},
	}

	return cmd
}

func runVersion(tapCli command.Cli) error {
	tapCli.Out().With(aec.Bold).Println("tapsync version " + cliversion.Version)

	out := tapCli.Output()
	out.Write(fmt.Sprintf(" commit:     %s\n", cliversion.GitCommit))
	out.Write(fmt.Sprintf(" built:      %s\n", cliversion.BuildTime))
	out.Write(fmt.Sprintf(" go version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH))

	return nil
}
