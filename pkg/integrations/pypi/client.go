package pypi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autoreqs/pkg/buildinfo"
	"github.com/matzehuels/autoreqs/pkg/cache"
	apperrors "github.com/matzehuels/autoreqs/pkg/errors"
	"github.com/matzehuels/autoreqs/pkg/integrations"
)

// DefaultBaseURL is the public PyPI JSON API root.
const DefaultBaseURL = "https://pypi.org/pypi"

// Per-lookup deadlines. Each lookup makes at most one attempt.
const (
	ExistsTimeout  = 3 * time.Second
	VersionTimeout = 5 * time.Second
)

// PackageInfo holds the subset of PyPI metadata autoreqs needs.
//
// Found is false when the index answered 404 for the package; the other
// fields are empty in that case.
type PackageInfo struct {
	Found   bool   `json:"found"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Client provides access to the PyPI JSON API.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
}

// NewClient creates a PyPI client memoizing lookups in c.
// An empty baseURL selects DefaultBaseURL.
func NewClient(c cache.Cache, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(c, "pypi:", 0, map[string]string{
			"Accept":     "application/json",
			"User-Agent": buildinfo.UserAgent(),
		}),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  log.Default(),
	}
}

// WithLogger sets the logger used for debug output about failed lookups.
func (c *Client) WithLogger(l *log.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// BaseURL returns the index root the client queries.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchPackage retrieves metadata for pkg. A 404 is not an error: it yields a
// PackageInfo with Found == false. Network failures, non-200 statuses and
// undecodable bodies are returned as errors and are not memoized.
func (c *Client) FetchPackage(ctx context.Context, pkg string) (*PackageInfo, error) {
	pkg = integrations.NormalizePkgName(pkg)
	if err := apperrors.ValidatePythonPackageName(pkg); err != nil {
		return nil, err
	}

	var info PackageInfo
	err := c.Cached(ctx, pkg, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			*info = PackageInfo{Found: false}
			return nil
		}
		return err
	}
	if strings.TrimSpace(data.Info.Version) == "" {
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "pypi response for %s has no info.version", pkg)
	}

	*info = PackageInfo{
		Found:   true,
		Name:    data.Info.Name,
		Version: strings.TrimSpace(data.Info.Version),
		Summary: data.Info.Summary,
	}
	return nil
}

// Exists reports whether pkg is published on the index. Only a definite
// "not found" answer yields false; every other failure yields true.
func (c *Client) Exists(ctx context.Context, pkg string) bool {
	ctx, cancel := context.WithTimeout(ctx, ExistsTimeout)
	defer cancel()

	info, err := c.FetchPackage(ctx, pkg)
	if err != nil {
		c.logger.Debug("index lookup failed, assuming package exists", "package", pkg, "err", err)
		return true
	}
	return info.Found
}

// LatestVersion returns the newest published version of pkg, or ("", false)
// when the index cannot provide one for any reason.
func (c *Client) LatestVersion(ctx context.Context, pkg string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, VersionTimeout)
	defer cancel()

	info, err := c.FetchPackage(ctx, pkg)
	if err != nil {
		c.logger.Debug("index version lookup failed", "package", pkg, "err", err)
		return "", false
	}
	if !info.Found {
		return "", false
	}
	return info.Version, true
}

type apiResponse struct {
	Info apiInfo `json:"info"`
}

type apiInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Summary string `json:"summary"`
}
