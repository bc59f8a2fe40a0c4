package api

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingBody notes whether the response body was closed.
type recordingBody struct {
	io.Reader
	closed bool
}

func (b *recordingBody) Close() error {
	b.closed = true
	return nil
}

type fakeTransport struct {
	resp *http.Response
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.resp.Request = req
	return f.resp, nil
}

func newFakeClient(t *testing.T, status int, body string) (*RESTClient, *recordingBody) {
	t.Helper()

	rb := &recordingBody{Reader: strings.NewReader(body)}
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       rb,
		Request:    &http.Request{URL: &url.URL{}},
	}

	client := &RESTClient{
		client: &http.Client{Transport: &fakeTransport{resp: resp}},
		host:   "registry.example.com",
	}

	return client, rb
}

// TestDo_ClosesBodyOnNoContent verifies a 204 response does not leak its
// body.
func TestDo_ClosesBodyOnNoContent(t *testing.T) {
	t.Parallel()
	client, rb := newFakeClient(t, http.StatusNoContent, "")

	var out string
	require.NoError(t, client.Get("/ping", &out))
	require.True(t, rb.closed)
	require.Empty(t, out)
}

// TestDo_ClosesBodyWhenResponseDiscarded covers the nil-response path.
func TestDo_ClosesBodyWhenResponseDiscarded(t *testing.T) {
	t.Parallel()
	client, rb := newFakeClient(t, http.StatusOK, `{"ok":true}`)

	require.NoError(t, client.Get("/ping", nil))
	require.True(t, rb.closed)
}

// TestDo_ClosesBodyOnErrorStatus covers the non-success path.
func TestDo_ClosesBodyOnErrorStatus(t *testing.T) {
	t.Parallel()
	client, rb := newFakeClient(t, http.StatusInternalServerError, "")

	var out string
	require.Error(t, client.Get("/ping", &out))
	require.True(t, rb.closed)
}

// TestGet_StringResponse copies the raw body into a string target.
func TestGet_StringResponse(t *testing.T) {
	t.Parallel()
	client, rb := newFakeClient(t, http.StatusOK, `{"ok":true}`)

	var out string
	require.NoError(t, client.Get("/ping", &out))
	require.Equal(t, `{"ok":true}`, out)
	require.True(t, rb.closed)
}

// TestRestURL passes absolute URLs through and prefixes bare hosts.
func TestRestURL(t *testing.T) {
	t.Parallel()
	require.Equal(t, "https://registry.example.com/pkg", restURL("registry.example.com", "/pkg"))
	require.Equal(t, "http://127.0.0.1:8080/pkg", restURL("http://127.0.0.1:8080", "/pkg"))
	require.Equal(t, "https://cdn.example.com/t.tgz", restURL("registry.example.com", "https://cdn.example.com/t.tgz"))
}
