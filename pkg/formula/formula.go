// Package formula reads and rewrites Homebrew formula files. Only the two
// release-bearing lines (url and sha256) are ever touched; everything else
// in the file, including hand-authored comments, is preserved byte for byte.
package formula

import (
	"os"
	"regexp"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound means no formula exists at the expected path.
	ErrNotFound = errors.New("formula not found")

	// ErrUnrecognized means the formula text has no anchored url or
	// sha256 line to rewrite.
	ErrUnrecognized = errors.New("formula has no recognizable url and sha256 lines")

	// ErrVerificationMismatch means the rewrite was persisted but the
	// re-read file does not carry the expected digest. Fatal and
	// non-retryable; the file is left in place for inspection.
	ErrVerificationMismatch = errors.New("formula verification failed after rewrite")
)

var (
	urlLineRE    = regexp.MustCompile(`(?m)^(\s*url ")([^"]+)(")`)
	sha256LineRE = regexp.MustCompile(`(?m)^(\s*sha256 ")([0-9a-fA-F]{64})(")`)
)

// Formula is the loaded manifest text plus the path it came from.
type Formula struct {
	path string
	text string
}

// Load reads the formula file at path.
func Load(path string) (*Formula, error) {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil, errors.Wrapf(ErrNotFound, "%s", path)
	case err != nil:
		return nil, errors.Wrapf(err, "failed to read formula %s", path)
	}

	return &Formula{path: path, text: string(data)}, nil
}

func (f *Formula) Path() string {
	return f.path
}

func (f *Formula) Text() string {
	return f.text
}

// URL returns the value of the anchored url line.
func (f *Formula) URL() (string, error) {
	m := urlLineRE.FindStringSubmatch(f.text)
	if m == nil {
		return "", errors.Wrapf(ErrUnrecognized, "%s", f.path)
	}
	return m[2], nil
}

// SHA256 returns the hex digest pinned by the anchored sha256 line.
func (f *Formula) SHA256() (string, error) {
	m := sha256LineRE.FindStringSubmatch(f.text)
	if m == nil {
		return "", errors.Wrapf(ErrUnrecognized, "%s", f.path)
	}
	return m[2], nil
}

// Version extracts the release version embedded in the url line, matched
// against the registry's <base>-<version>.tgz naming convention for the
// given package base name.
func (f *Formula) Version(base string) (string, error) {
	url, err := f.URL()
	if err != nil {
		return "", err
	}

	versionRE := regexp.MustCompile(regexp.QuoteMeta(base) + `-([0-9][^"/]*)\.tgz$`)
	m := versionRE.FindStringSubmatch(url)
	if m == nil {
		return "", errors.Wrapf(ErrUnrecognized, "url %q does not embed a %s version", url, base)
	}

	return m[1], nil
}

// Rewrite returns the formula text with the url and sha256 lines replaced.
// The two fields pin the same release, so they are only ever replaced
// together; if either anchor is missing nothing is substituted. Only the
// first match of each anchor is rewritten: the formula's own stanza comes
// before any resource blocks, whose pins belong to other artifacts.
func (f *Formula) Rewrite(url, sha256Hex string) (string, error) {
	if !urlLineRE.MatchString(f.text) || !sha256LineRE.MatchString(f.text) {
		return "", errors.Wrapf(ErrUnrecognized, "%s", f.path)
	}

	text := replaceFirst(urlLineRE, f.text, "${1}"+url+"${3}")
	text = replaceFirst(sha256LineRE, text, "${1}"+sha256Hex+"${3}")

	return text, nil
}

// replaceFirst substitutes repl into the first match of re only.
func replaceFirst(re *regexp.Regexp, text, repl string) string {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + re.ReplaceAllString(text[loc[0]:loc[1]], repl) + text[loc[1]:]
}

// Persist writes the rewritten text and verifies it landed: the file is
// re-read and the digest it now pins must equal sha256Hex. On mismatch the
// written file is intentionally left behind.
func (f *Formula) Persist(text, sha256Hex string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(f.path); err == nil {
		mode = fi.Mode()
	}

	if err := os.WriteFile(f.path, []byte(text), mode); err != nil {
		return errors.Wrapf(err, "failed to write formula %s", f.path)
	}

	reread, err := Load(f.path)
	if err != nil {
		return err
	}

	got, err := reread.SHA256()
	if err != nil {
		return errors.Wrapf(ErrVerificationMismatch, "%s: %v", f.path, err)
	}
	if got != sha256Hex {
		return errors.Wrapf(ErrVerificationMismatch, "%s pins %s, want %s", f.path, got, sha256Hex)
	}

	f.text = text

	return nil
}
