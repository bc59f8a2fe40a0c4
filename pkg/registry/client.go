package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"tapsync/pkg/api"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const contentTypeOctetStream = "application/octet-stream"

type client struct {
	restClient *api.RESTClient
	host       string
}

// Client is a client used to communicate with an npm-compatible package
// registry.
type Client interface {
	// Latest resolves the metadata of the latest published version of
	// the named package.
	Latest(ctx context.Context, name string) (*Release, error)

	// Resolve returns release metadata for a pinned version without
	// querying the registry: the tarball URL follows the registry's
	// deterministic naming convention.
	Resolve(name, version string) *Release

	// DownloadTarball streams the tarball at url. The caller owns
	// closing the returned body.
	DownloadTarball(ctx context.Context, url string) (io.ReadCloser, error)
}

var _ Client = &client{}

// New returns a new REST client for the package registry.
func New(host, userAgent string, colorize bool, out io.Writer) (Client, error) {
	opts := api.ClientOptions{
		Log:         out,
		Host:        host,
		LogColorize: colorize,
		Headers:     map[string]string{"User-Agent": userAgent},
	}

	restClient, err := api.NewRESTClient(opts)
	if err != nil {
		return nil, err
	}

	return &client{
		restClient: restClient,
		host:       host,
	}, nil
}

// Latest retrieves the metadata document for the latest dist-tag and runs
// it through the extraction strategies.
func (c *client) Latest(ctx context.Context, name string) (*Release, error) {
	var body []byte

	err := c.restClient.GetWithContext(ctx, "/"+name+"/latest", &body)
	if err != nil {
		return nil, errors.Wrapf(ErrRegistryUnreachable, "fetching latest metadata for %s: %v", name, err)
	}

	release, err := extractRelease(body)
	if err != nil {
		return nil, err
	}

	if release.Name == "" {
		release.Name = name
	}

	logrus.WithFields(logrus.Fields{
		"package": release.Name,
		"version": release.Version,
		"shasum":  release.Shasum,
	}).Debug("resolved latest release")

	return release, nil
}

// Resolve builds release metadata for an explicitly pinned version. The
// registry's published shasum is unknown on this path and stays empty.
func (c *client) Resolve(name, version string) *Release {
	return &Release{
		Name:       name,
		Version:    version,
		TarballURL: TarballURL(c.host, name, version),
	}
}

// DownloadTarball streams a package tarball from the registry.
func (c *client) DownloadTarball(ctx context.Context, url string) (io.ReadCloser, error) {
	return c.restClient.RequestStream(
		ctx,
		http.MethodGet,
		url,
		nil,
		api.WithHeader("Accept", contentTypeOctetStream),
	)
}

// TarballURL constructs the conventional dist URL for a package version:
// <registry>/<name>/-/<base>-<version>.tgz. The base strips any scope
// prefix, matching the registry's naming convention.
func TarballURL(host, name, version string) string {
	prefix := host
	if !strings.HasPrefix(prefix, "http://") && !strings.HasPrefix(prefix, "https://") {
		prefix = "https://" + prefix
	}
	return fmt.Sprintf("%s/%s/-/%s-%s.tgz", strings.TrimSuffix(prefix, "/"), name, path.Base(name), version)
}
