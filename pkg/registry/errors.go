package registry

import "github.com/pkg/errors"

var (
	// ErrRegistryUnreachable marks transport-level failures: DNS, refused
	// connections, timeouts, and non-success HTTP statuses.
	ErrRegistryUnreachable = errors.New("registry unreachable")

	// ErrMalformedResponse marks a reachable registry whose metadata
	// document could not be understood by any extraction strategy.
	ErrMalformedResponse = errors.New("malformed registry response")
)
