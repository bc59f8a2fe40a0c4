package cli

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// IsColorDisabled returns true if environment variables NO_COLOR or CLICOLOR prohibit usage of color codes
// in terminal output.
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("CLICOLOR") == "0"
}

// NoArgs validates args and returns an error if there are any args.
func NoArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}

	if cmd.HasSubCommands() {
		return errors.Errorf("%s: unknown command: %s %s", cmd.Root().Name(), cmd.CommandPath(), args[0])
	}

	return errors.Errorf(
		"%s: '%s' accepts no arguments\n\nUsage: %s",
		cmd.Root().Name(),
		cmd.CommandPath(),
		cmd.UseLine(),
	)
}
