package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// =============================================================================
// Runtime API Client
// =============================================================================

// apiVersion pins the container endpoints to the daemon API version this
// client speaks.
const (
	apiVersion      = "v1.45"
	apiVersionMajor = 1
	apiVersionMinor = 45
)

const (
	defaultHost      = "localhost"
	defaultUserAgent = "dockcheck"
)

// Client issues requests against the daemon's management API over the unix
// socket. Each call opens its own connection for exactly one exchange; there
// is no pooling or reuse.
type Client struct {
	transport *Transport
	host      string
	userAgent string
}

// NewClient creates a client on top of the given transport.
func NewClient(transport *Transport) *Client {
	return &Client{
		transport: transport,
		host:      defaultHost,
		userAgent: defaultUserAgent,
	}
}

// get issues a GET for endpoint and returns the JSON payload of a successful
// envelope. Non-2xx statuses become a RemoteError carrying the daemon's own
// error body.
func (c *Client) get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	request := fmt.Sprintf("GET %s HTTP/1.1\r\n"+
		"Host: %s\r\n"+
		"User-Agent: %s\r\n"+
		"Accept: application/json\r\n"+
		"Connection: close\r\n\r\n",
		endpoint, c.host, c.userAgent)

	raw, err := c.transport.Exchange(ctx, []byte(request))
	if err != nil {
		return nil, err
	}

	env, err := ParseEnvelope(endpoint, raw)
	if err != nil {
		return nil, err
	}
	if env.StatusCode < 200 || env.StatusCode > 299 {
		return nil, &RemoteError{
			Endpoint:   endpoint,
			StatusCode: env.StatusCode,
			APIVersion: env.APIVersion,
			Body:       string(env.Payload),
		}
	}
	return env.Payload, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	payload, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &ProtocolError{Endpoint: endpoint, Reason: err.Error()}
	}
	return nil
}

// =============================================================================
// Endpoints
// =============================================================================

// Info fetches the engine-wide system information.
func (c *Client) Info(ctx context.Context) (SystemInfo, error) {
	var info SystemInfo
	if err := c.getJSON(ctx, "/info", &info); err != nil {
		return SystemInfo{}, err
	}
	return info, nil
}

// Volumes fetches the volume listing.
func (c *Client) Volumes(ctx context.Context) (VolumeList, error) {
	var vols VolumeList
	if err := c.getJSON(ctx, "/volumes", &vols); err != nil {
		return VolumeList{}, err
	}
	return vols, nil
}

// Version fetches the daemon version report.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	var ver VersionInfo
	if err := c.getJSON(ctx, "/version", &ver); err != nil {
		return VersionInfo{}, err
	}
	return ver, nil
}

// EngineState fetches /info and /volumes concurrently. The two calls are
// independent, share no state, and both are needed before the engine check
// can produce output; the aggregate fails if either sub-call fails.
func (c *Client) EngineState(ctx context.Context) (SystemInfo, VolumeList, error) {
	var (
		info SystemInfo
		vols VolumeList
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = c.Info(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		vols, err = c.Volumes(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return SystemInfo{}, VolumeList{}, err
	}
	return info, vols, nil
}

// ListContainers queries /containers/json filtered by name, including
// stopped containers.
func (c *Client) ListContainers(ctx context.Context, name string) ([]ContainerSummary, error) {
	filters := url.QueryEscape(fmt.Sprintf(`{"name":[%q]}`, name))
	endpoint := fmt.Sprintf("/%s/containers/json?all=true&filters=%s", apiVersion, filters)

	var containers []ContainerSummary
	if err := c.getJSON(ctx, endpoint, &containers); err != nil {
		return nil, err
	}
	return containers, nil
}

// ContainerStats fetches a single live-stats sample for the container.
func (c *Client) ContainerStats(ctx context.Context, id string) (ContainerStats, error) {
	endpoint := fmt.Sprintf("/%s/containers/%s/stats?stream=false&one-shot=false", apiVersion, id)

	var stats ContainerStats
	if err := c.getJSON(ctx, endpoint, &stats); err != nil {
		return ContainerStats{}, err
	}
	return stats, nil
}

// FindContainer resolves name to exactly one container. In wildcard mode the
// filtered query itself must return exactly one result, which is taken as-is
// without re-checking its name against the filter that produced it. In exact
// mode the result set is scanned for a name equal to "/<name>" — the API
// prepends a path-style slash to container names.
func (c *Client) FindContainer(ctx context.Context, name string, wildcard bool) (ContainerSummary, error) {
	containers, err := c.ListContainers(ctx, name)
	if err != nil {
		return ContainerSummary{}, err
	}

	if len(containers) == 0 {
		return ContainerSummary{}, fmt.Errorf("%w: name %s", ErrNoContainerMatched, name)
	}

	if wildcard {
		if len(containers) > 1 {
			return ContainerSummary{}, fmt.Errorf("%w: wildcard name %s", ErrMultipleContainersMatched, name)
		}
		return containers[0], nil
	}

	for _, cnt := range containers {
		for _, n := range cnt.Names {
			if n == "/"+name {
				return cnt, nil
			}
		}
	}
	return ContainerSummary{}, fmt.Errorf("%w: name %s", ErrNoContainerMatched, name)
}

// CheckAPIVersion verifies that the daemon still supports the API version
// this client is pinned to.
func (c *Client) CheckAPIVersion(ctx context.Context) (VersionInfo, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return VersionInfo{}, err
	}
	if versionAbove(ver.MinAPIVersion, apiVersionMajor, apiVersionMinor) {
		return ver, fmt.Errorf("%w: daemon minimum is %s, this check speaks %s",
			ErrAPIVersionUnsupported, ver.MinAPIVersion, apiVersion)
	}
	return ver, nil
}

// versionAbove reports whether the dotted version string v exceeds
// major.minor numerically.
func versionAbove(v string, major, minor int) bool {
	parts := strings.SplitN(strings.TrimSpace(v), ".", 2)
	maj, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	min := 0
	if len(parts) == 2 {
		min, _ = strconv.Atoi(parts[1])
	}
	return maj > major || (maj == major && min > minor)
}
