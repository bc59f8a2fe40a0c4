package api

import (
	"fmt"
	"io"
	"time"
)

// ClientOptions holds available options to configure API clients.
type ClientOptions struct {
	// Headers are the headers that will be sent with every API request.
	// Default headers set are Accept, Content-Type, and User-Agent.
	// Default headers will be overridden by keys specified in Headers.
	Headers map[string]string

	// Host is the default host that API requests will be sent to.
	Host string

	// Log specifies a writer to write API request logs to.
	Log io.Writer

	// LogColorize enables colorized logging to Log for display in a terminal.
	// Default is no coloring.
	LogColorize bool

	// LogVerboseHTTP enables logging HTTP headers and bodies to Log.
	// Default is only logging request URLs and response statuses.
	// By default fallback to logrus log level.
	LogVerboseHTTP bool

	// SkipDefaultHeaders disables setting of the default headers.
	SkipDefaultHeaders bool

	// Timeout specifies a time limit for each API request.
	// Default is 30 seconds.
	Timeout time.Duration
}

// DefaultTimeout bounds every registry round trip. The registry applies
// no server-side limit, so an unset timeout would hang a poll forever.
const DefaultTimeout = 30 * time.Second

func optionsNeedResolution(opts ClientOptions) bool {
	if opts.Host == "" {
		return true
	}

	if opts.Timeout == 0 {
		return true
	}

	return false
}

func resolveOptions(opts ClientOptions) (ClientOptions, error) {
	if opts.Host == "" {
		return ClientOptions{}, fmt.Errorf("host not found")
	}

	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	return opts, nil
}
