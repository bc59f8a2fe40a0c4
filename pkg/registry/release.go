package registry

import (
	"encoding/json"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Release holds the metadata resolved for one published version of a package.
// It is produced fresh on every invocation and never persisted.
type Release struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	TarballURL string `json:"-"`

	// Shasum is the digest the registry claims for the tarball. It is
	// advisory only: verification always hashes the downloaded bytes.
	Shasum string `json:"-"`
}

// extractor pulls release fields out of a raw metadata document.
// Extractors are tried in order and the first success wins.
type extractor func(body []byte) (*Release, error)

var extractors = []extractor{
	extractStructured,
	extractPattern,
}

// extractStructured decodes the registry's JSON document.
func extractStructured(body []byte) (*Release, error) {
	var doc struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Dist    struct {
			Tarball string `json:"tarball"`
			Shasum  string `json:"shasum"`
		} `json:"dist"`
	}

	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	if doc.Version == "" || doc.Dist.Tarball == "" {
		return nil, errors.New("metadata document is missing version or dist.tarball")
	}

	return &Release{
		Name:       doc.Name,
		Version:    doc.Version,
		TarballURL: doc.Dist.Tarball,
		Shasum:     doc.Dist.Shasum,
	}, nil
}

var (
	versionFieldRE = regexp.MustCompile(`"version"\s*:\s*"([^"]+)"`)
	tarballFieldRE = regexp.MustCompile(`"tarball"\s*:\s*"([^"]+)"`)
	shasumFieldRE  = regexp.MustCompile(`"shasum"\s*:\s*"([0-9a-fA-F]+)"`)
	nameFieldRE    = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)
)

// extractPattern is the fallback for documents a structured decode cannot
// handle. It scrapes the fields the updater needs with anchored patterns.
func extractPattern(body []byte) (*Release, error) {
	version := versionFieldRE.FindSubmatch(body)
	tarball := tarballFieldRE.FindSubmatch(body)
	if version == nil || tarball == nil {
		return nil, errors.New("metadata document has no recognizable version or tarball field")
	}

	release := &Release{
		Version:    string(version[1]),
		TarballURL: string(tarball[1]),
	}

	if name := nameFieldRE.FindSubmatch(body); name != nil {
		release.Name = string(name[1])
	}
	if shasum := shasumFieldRE.FindSubmatch(body); shasum != nil {
		release.Shasum = string(shasum[1])
	}

	return release, nil
}

func extractRelease(body []byte) (*Release, error) {
	var lastErr error
	for _, extract := range extractors {
		release, err := extract(body)
		if err == nil {
			return release, nil
		}
		lastErr = err
	}
	return nil, errors.Wrap(ErrMalformedResponse, lastErr.Error())
}

// SemVer parses the release version as a semantic version.
func (r *Release) SemVer() (*semver.Version, error) {
	v, err := semver.NewVersion(r.Version)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "registry reported version %q: %v", r.Version, err)
	}
	return v, nil
}
