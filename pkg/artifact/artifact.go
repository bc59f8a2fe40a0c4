// Package artifact downloads release tarballs to a scratch file and
// computes the digest the tap manifest pins.
package artifact

import (
	"context"
	"io"
	"os"

	"tapsync/pkg/registry"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrDownloadFailed marks a tarball fetch that did not produce a
	// complete body: transport error, timeout, or non-success status.
	ErrDownloadFailed = errors.New("tarball download failed")

	// ErrArtifactTooSmall marks a download below the plausibility
	// threshold. A registry error page is a few hundred bytes; a real
	// package tarball never is.
	ErrArtifactTooSmall = errors.New("downloaded artifact is implausibly small")
)

// MinTarballSize is the minimum byte count accepted for a tarball.
const MinTarballSize = 1000

// Verified describes a tarball that was fully downloaded and hashed.
type Verified struct {
	Digest digest.Digest
	Size   int64
}

// Hex returns the bare hex encoding of the digest, the form the formula
// sha256 field uses.
func (v *Verified) Hex() string {
	return v.Digest.Encoded()
}

// Fetch streams the tarball at url into a scratch file, checks the byte
// count, and hashes the staged bytes. The scratch file is removed on
// every exit path.
func Fetch(ctx context.Context, client registry.Client, url string) (_ *Verified, retErr error) {
	body, err := client.DownloadTarball(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(ErrDownloadFailed, "%s: %v", url, err)
	}
	defer body.Close()

	scratch, err := os.CreateTemp("", "tapsync-tarball-*.tgz")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create scratch file")
	}
	defer func() {
		scratch.Close()
		if err := os.Remove(scratch.Name()); err != nil {
			logrus.WithError(err).WithField("file", scratch.Name()).Debug("Error removing scratch file")
		}
	}()

	size, err := io.Copy(scratch, body)
	if err != nil {
		return nil, errors.Wrapf(ErrDownloadFailed, "%s: %v", url, err)
	}

	if size < MinTarballSize {
		return nil, errors.Wrapf(ErrArtifactTooSmall, "%s: got %d bytes, want at least %d", url, size, MinTarballSize)
	}

	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "failed to rewind scratch file")
	}

	dgst, err := digest.FromReader(scratch)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash scratch file")
	}

	logrus.WithFields(logrus.Fields{
		"url":    url,
		"size":   size,
		"digest": dgst.String(),
	}).Debug("verified tarball")

	return &Verified{Digest: dgst, Size: size}, nil
}
