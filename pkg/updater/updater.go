// Package updater drives one synchronization pass: resolve the target
// release, stage and hash its tarball, and rewrite the formula when the
// pinned release is behind.
//
// A pass is stateless and idempotent. Two passes against an unchanged
// registry are a no-op, so the tool can run on every poll without
// thrashing the tap. Runs are not designed to be concurrent: do not point
// two invocations at the same formula at once.
package updater

import (
	"context"

	"tapsync/pkg/artifact"
	"tapsync/pkg/formula"
	"tapsync/pkg/registry"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
)

// Options configure a single synchronization pass.
type Options struct {
	// FormulaPath is the location of the formula file to update.
	FormulaPath string

	// Package is the registry name of the packaged tool.
	Package string

	// Base is the package name without any scope prefix, as it appears
	// in tarball file names.
	Base string

	// Target pins a version. Empty means the registry's latest.
	Target string

	// DryRun computes the would-be rewrite without touching the file.
	DryRun bool
}

// Result reports what a pass did, or would do under DryRun.
type Result struct {
	// Release is the resolved target release.
	Release *registry.Release

	// Current is the version the formula pinned when the pass started.
	Current string

	// Noop is true when the formula already pins the target release.
	Noop bool

	OldURL string
	OldSHA string
	NewSHA string

	// Size is the verified tarball byte count. Zero on a no-op.
	Size int64
}

// Run performs one pass. On a no-op it returns early without downloading
// anything.
func Run(ctx context.Context, client registry.Client, opts Options) (*Result, error) {
	f, err := formula.Load(opts.FormulaPath)
	if err != nil {
		return nil, err
	}

	current, err := f.Version(opts.Base)
	if err != nil {
		return nil, err
	}

	var release *registry.Release
	if opts.Target == "" {
		release, err = client.Latest(ctx, opts.Package)
		if err != nil {
			return nil, err
		}
	} else {
		release = client.Resolve(opts.Package, opts.Target)
	}

	result := &Result{
		Release: release,
		Current: current,
	}

	if sameVersion(current, release.Version) {
		result.Noop = true
		return result, nil
	}

	result.OldURL, _ = f.URL()
	result.OldSHA, _ = f.SHA256()

	verified, err := artifact.Fetch(ctx, client, release.TarballURL)
	if err != nil {
		return nil, err
	}

	result.NewSHA = verified.Hex()
	result.Size = verified.Size

	// The published shasum is advisory: the formula always pins the
	// digest of the bytes we actually downloaded.
	if release.Shasum != "" && release.Shasum != result.NewSHA {
		logrus.WithFields(logrus.Fields{
			"published": release.Shasum,
			"computed":  result.NewSHA,
		}).Debug("registry shasum differs from computed digest")
	}

	text, err := f.Rewrite(release.TarballURL, result.NewSHA)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		return result, nil
	}

	if err := f.Persist(text, result.NewSHA); err != nil {
		return nil, err
	}

	return result, nil
}

// sameVersion compares semantically when both sides parse, falling back
// to string equality for versions semver cannot represent.
func sameVersion(a, b string) bool {
	av, errA := semver.NewVersion(a)
	bv, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return av.Equal(bv)
}
