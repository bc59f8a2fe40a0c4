package update

import (
	"context"
	"fmt"

	"tapsync/cli"
	"tapsync/cli/command"
	"tapsync/cli/version"
	"tapsync/pkg/gitops"
	"tapsync/pkg/output"
	"tapsync/pkg/updater"

	"github.com/docker/go-units"
	"github.com/morikuni/aec"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type updateOptions struct {
	version string
	push    bool
	dryRun  bool
}

func NewUpdateCommand(tapCli command.Cli) *cobra.Command {
	var opts updateOptions

	cmd := &cobra.Command{
		Use:   "update [OPTIONS]",
		Short: "Synchronize the tap formula with the registry",
		Args:  cli.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), tapCli, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.version, "version", "", "Pin a release version instead of the registry's latest")
	flags.BoolVar(&opts.push, "push", false, "Commit the rewritten formula and push it to the tap remote")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Show the would-be rewrite without touching the formula")

	return cmd
}

func runUpdate(ctx context.Context, tapCli command.Cli, opts updateOptions) error {
	settings, err := tapCli.Settings()
	if err != nil {
		return err
	}

	// Dry-run always wins: no disk mutation and no git, whatever else
	// is set.
	if opts.dryRun {
		opts.push = false
	}

	tapCli.Output().Prettyln(output.Text{
		Plain: "tapsync update v" + version.Version,
		Fancy: aec.Bold.Apply("tapsync update") + " " + aec.LightBlackF.Apply("v"+version.Version),
	})

	progress := tapCli.Progress()

	var repo *gitops.Repo
	if opts.push {
		repo = gitops.NewRepo(settings.Remote, settings.TapDir)

		progress.StartProgressIndicator(tapCli.Err())
		err := repo.Ensure(ctx)
		progress.StopProgressIndicator()
		if err != nil {
			return err
		}

		logrus.WithField("dir", repo.Dir()).Debug("tap clone ready")
	}

	client, err := tapCli.RegistryClient()
	if err != nil {
		return err
	}

	var result *updater.Result
	err = progress.RunWithProgress("Synchronizing "+settings.Package, func() error {
		var runErr error
		result, runErr = updater.Run(ctx, client, updater.Options{
			FormulaPath: settings.FormulaPath(),
			Package:     settings.Package,
			Base:        settings.Base(),
			Target:      opts.version,
			DryRun:      opts.dryRun,
		})
		return runErr
	}, tapCli.Err())

	progress.Stream(tapCli.Err(), "")

	if err != nil {
		return err
	}

	out := tapCli.Output()

	if result.Noop {
		out.Prettyln(output.Text{
			Plain: fmt.Sprintf("%s already pins %s, nothing to do", settings.Formula, result.Release.Version),
			Fancy: fmt.Sprintf("%s already pins %s, nothing to do",
				aec.Bold.Apply(settings.Formula), aec.GreenF.Apply(result.Release.Version)),
		})
		return nil
	}

	if opts.dryRun {
		printDiff(out, result)
		out.Write("dry run, formula left untouched\n")
		return nil
	}

	out.Write(fmt.Sprintf("%s updated: %s -> ", settings.Formula, result.Current))
	tapCli.Out().With(aec.GreenF).Print(result.Release.Version)
	out.Write(fmt.Sprintf(" (%s)\n", units.HumanSize(float64(result.Size))))

	if !opts.push {
		return nil
	}

	message := fmt.Sprintf("%s %s", settings.Package, result.Release.Version)
	if err := repo.Publish(ctx, settings.FormulaPath(), message); err != nil {
		if errors.Is(err, gitops.ErrPushFailed) {
			// The rewritten formula is the durable unit of success;
			// it stays in place even when publishing fails.
			out.PrettyErrorln(output.Text{
				Plain: "formula was updated locally but could not be pushed",
				Fancy: aec.YellowF.Apply("formula was updated locally but could not be pushed"),
			})
		}
		return err
	}

	out.Write("pushed " + message + " to " + settings.Remote + "\n")

	return nil
}

func printDiff(out *output.Output, result *updater.Result) {
	branch := "├──"
	end := "└──"

	out.Write(fmt.Sprintf("%s url:    %s -> %s\n", branch, result.OldURL, result.Release.TarballURL))
	out.Write(fmt.Sprintf("%s sha256: %s -> %s\n", end, result.OldSHA, result.NewSHA))
}
