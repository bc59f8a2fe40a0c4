package commands

import (
	"tapsync/cli/command"
	tapInit "tapsync/cli/command/init"
	"tapsync/cli/command/update"
	"tapsync/cli/command/version"

	"github.com/spf13/cobra"
)

// AddCommands adds all the commands from cli/command to the root command
func AddCommands(cmd *cobra.Command, tapCli command.Cli) {
	cmd.AddCommand(
		update.NewUpdateCommand(tapCli),
		tapInit.NewInitCommand(tapCli),
		version.NewVersionCommand(tapCli),
	)
}
