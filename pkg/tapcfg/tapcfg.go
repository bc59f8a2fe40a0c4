// Package tapcfg resolves the tap synchronizer settings from the
// environment. Every knob has a default so a bare invocation works
// against the published tap.
package tapcfg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Environment variables recognized by tapsync.
const (
	EnvRegistry = "TAPSYNC_REGISTRY"
	EnvPackage  = "TAPSYNC_PACKAGE"
	EnvFormula  = "TAPSYNC_FORMULA"
	EnvRemote   = "TAPSYNC_REMOTE"
	EnvTapDir   = "TAPSYNC_TAP_DIR"
)

const (
	defaultRegistry = "registry.npmjs.org"
	defaultPackage  = "voyageai-cli"
	defaultRemote   = "git@github.com:voyageai/homebrew-voyageai.git"
)

// Settings is the fully resolved configuration for one run.
type Settings struct {
	// Registry is the package registry host queried for releases.
	Registry string `validate:"required,tap_host"`

	// Package is the registry name of the packaged tool.
	Package string `validate:"required,tap_package"`

	// Formula is the base name of the manifest file inside the tap.
	Formula string `validate:"required"`

	// Remote is the git location of the tap repository.
	Remote string `validate:"required"`

	// TapDir is the local clone path of the tap repository.
	TapDir string `validate:"required"`
}

// Base returns the package name stripped of any scope prefix, as used in
// tarball file names.
func (s *Settings) Base() string {
	if i := strings.LastIndex(s.Package, "/"); i >= 0 {
		return s.Package[i+1:]
	}
	return s.Package
}

// FormulaPath returns the absolute path of the formula inside the tap clone.
func (s *Settings) FormulaPath() string {
	return filepath.Join(s.TapDir, "Formula", s.Formula)
}

// Resolve builds Settings from the environment, filling defaults for
// anything unset, and validates the result.
func Resolve() (*Settings, error) {
	s := &Settings{
		Registry: envOr(EnvRegistry, defaultRegistry),
		Package:  envOr(EnvPackage, defaultPackage),
		Remote:   envOr(EnvRemote, defaultRemote),
		TapDir:   os.Getenv(EnvTapDir),
		Formula:  os.Getenv(EnvFormula),
	}

	if s.Formula == "" {
		s.Formula = s.Base() + ".rb"
	}

	if s.TapDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve home directory")
		}
		s.TapDir = filepath.Join(home, ".tapsync", "tap")
	}

	v, err := NewValidator()
	if err != nil {
		return nil, err
	}

	if err := v.Struct(s); err != nil {
		return nil, errors.Wrap(err, "invalid tapsync settings")
	}

	return s, nil
}

var (
	hostRegex        = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*(:[0-9]+)?$`)
	packageNameRegex = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*$`)
)

// NewValidator creates a new validator instance.
func NewValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("tap_host", validateHost); err != nil {
		return nil, err
	}

	if err := v.RegisterValidation("tap_package", validatePackageName); err != nil {
		return nil, err
	}

	return v, nil
}

// validateHost checks if the registry host looks like a hostname with an
// optional port. A scheme prefix is also accepted for local test servers.
func validateHost(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	v = strings.TrimPrefix(strings.TrimPrefix(v, "https://"), "http://")
	v = strings.TrimSuffix(v, "/")
	return hostRegex.MatchString(strings.ToLower(v))
}

// validatePackageName checks if the package name is valid, including
// scoped names.
func validatePackageName(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if len(v) < 1 || len(v) > 214 {
		return false
	}
	return packageNameRegex.MatchString(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
