package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tapsync/pkg/unsafeconv"
)

// RESTClient wraps methods for the different types of
// API requests that are supported by the registry.
type RESTClient struct {
	client *http.Client
	host   string
}

// NewRESTClient builds a client to send requests to registry REST endpoints.
// A hostname and timeout are resolved from defaults where unset; these
// behaviors can be overridden using the opts argument.
func NewRESTClient(opts ClientOptions) (*RESTClient, error) {
	if optionsNeedResolution(opts) {
		var err error
		opts, err = resolveOptions(opts)
		if err != nil {
			return nil, err
		}
	}

	client, err := NewHTTPClient(opts)
	if err != nil {
		return nil, err
	}

	return &RESTClient{
		client: client,
		host:   opts.Host,
	}, nil
}

// RequestOption is a function that can modify an http.Request.
type RequestOption func(*http.Request)

// WithHeader returns a RequestOption that adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// DoWithContext issues a request with type specified by method to the
// specified path with the specified body.
// The response is populated into the response argument.
func (c *RESTClient) DoWithContext(ctx context.Context, method string, path string, body io.Reader, response any, opts ...RequestOption) error {
	url := restURL(c.host, path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	// Set any additional headers from options
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !success {
		return HandleHTTPError(resp)
	}

	if resp.StatusCode == http.StatusNoContent || response == nil {
		return nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if s, ok := response.(*string); ok {
		*s = unsafeconv.String(b)
		return nil
	}

	if bs, ok := response.(*[]byte); ok {
		*bs = b
		return nil
	}

	err = json.Unmarshal(b, &response)
	if err != nil {
		return err
	}

	return nil
}

// Do wraps DoWithContext with context.Background.
func (c *RESTClient) Do(method string, path string, body io.Reader, response interface{}, opts ...RequestOption) error {
	return c.DoWithContext(context.Background(), method, path, body, response, opts...)
}

// Get issues a GET request to the specified path.
// The response is populated into the response argument.
func (c *RESTClient) Get(path string, resp interface{}, opts ...RequestOption) error {
	return c.Do(http.MethodGet, path, nil, resp, opts...)
}

// GetWithContext issues a GET request to the specified path with the given context.
func (c *RESTClient) GetWithContext(ctx context.Context, path string, resp interface{}, opts ...RequestOption) error {
	return c.DoWithContext(ctx, http.MethodGet, path, nil, resp, opts...)
}

// RequestStream issues a request and returns the raw response body for
// the caller to stream. The caller owns closing the body.
func (c *RESTClient) RequestStream(ctx context.Context, method string, path string, body io.Reader, opts ...RequestOption) (io.ReadCloser, error) {
	url := restURL(c.host, path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !success {
		defer resp.Body.Close()
		return nil, HandleHTTPError(resp)
	}

	return resp.Body, nil
}

func restURL(hostname string, pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "https://") || strings.HasPrefix(pathOrURL, "http://") {
		return pathOrURL
	}
	return restPrefix(hostname) + pathOrURL
}

func restPrefix(hostname string) string {
	if strings.HasPrefix(hostname, "http://") || strings.HasPrefix(hostname, "https://") {
		return hostname
	}
	return fmt.Sprintf("https://%s", hostname)
}
