// Package inventory provides a client for the cluster inventory API the
// advisor requests are assembled from.
package inventory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"stack-advisor/internal/config"
	"stack-advisor/internal/model"
)

// Client is a client for the inventory API.
type Client struct {
	endpoint   string             // Inventory API endpoint
	token      string             // Authentication token
	timeout    time.Duration      // Request timeout
	retry      config.RetryConfig // Retry configuration
	httpClient *resty.Client
	logger     zerolog.Logger
}

// NewClient creates a new inventory API client.
func NewClient(cfg *config.SourceConfig, retryCfg *config.RetryConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retry := config.RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
	}
	if retryCfg != nil {
		retry = *retryCfg
	}

	httpClient := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(timeout).
		SetHeader("X-Auth-Token", cfg.Token).
		SetHeader("Accept", "application/json").
		SetRetryCount(retry.MaxRetries).
		SetRetryWaitTime(retry.BaseDelay).
		SetRetryMaxWaitTime(retry.BaseDelay * 8).
		AddRetryCondition(retryCondition)

	return &Client{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		timeout:    timeout,
		retry:      retry,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "inventory-client").Logger(),
	}
}

// retryCondition retries on transport errors and 5xx responses only.
func retryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp != nil && resp.StatusCode() >= 500 {
		return true
	}
	return false
}

func clusterPath(cluster, resource string) string {
	return fmt.Sprintf("/api/v1/clusters/%s/%s", url.PathEscape(cluster), resource)
}

// get fetches path into result and checks both the HTTP status and the
// envelope error field.
func (c *Client) get(ctx context.Context, path string, result apiResult) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		Get(path)

	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("inventory request failed")
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("path", path).
			Str("body", string(resp.Body())).
			Msg("inventory API returned non-200 status")
		return fmt.Errorf("inventory API returned status %d for %s: %s", resp.StatusCode(), path, string(resp.Body()))
	}

	if msg := result.apiError(); msg != "" {
		c.logger.Error().Str("path", path).Str("api_error", msg).Msg("inventory API returned error")
		return fmt.Errorf("inventory API error for %s: %s", path, msg)
	}

	return nil
}

// GetHosts retrieves the host inventory of a cluster.
func (c *Client) GetHosts(ctx context.Context, cluster string) (model.HostInventory, error) {
	var result HostsResponse
	if err := c.get(ctx, clusterPath(cluster, "hosts"), &result); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("cluster", cluster).Int("count", len(result.Items)).Msg("fetched hosts")
	return result.Items, nil
}

// GetServices retrieves the service topology of a cluster.
func (c *Client) GetServices(ctx context.Context, cluster string) (model.ServiceTopology, error) {
	var result ServicesResponse
	if err := c.get(ctx, clusterPath(cluster, "services"), &result); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("cluster", cluster).Int("count", len(result.Items)).Msg("fetched services")
	return result.Items, nil
}

// GetConfigurations retrieves the live configuration of a cluster.
func (c *Client) GetConfigurations(ctx context.Context, cluster string) (*ConfigurationsData, error) {
	var result ConfigurationsResponse
	if err := c.get(ctx, clusterPath(cluster, "configurations"), &result); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("cluster", cluster).Int("config_types", len(result.Dat.Configurations)).Msg("fetched configurations")
	return &result.Dat, nil
}

// FetchRequest assembles a validated advisor request for a cluster. The
// three resources are fetched concurrently.
func (c *Client) FetchRequest(ctx context.Context, cluster string) (*model.Request, error) {
	if cluster == "" {
		return nil, fmt.Errorf("cluster name is required")
	}

	var (
		hosts    model.HostInventory
		services model.ServiceTopology
		configs  *ConfigurationsData
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hosts, err = c.GetHosts(gctx, cluster)
		return err
	})
	g.Go(func() error {
		var err error
		services, err = c.GetServices(gctx, cluster)
		return err
	})
	g.Go(func() error {
		var err error
		configs, err = c.GetConfigurations(gctx, cluster)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	req := &model.Request{
		Hosts:                 hosts,
		Services:              services,
		Configurations:        configs.Configurations,
		ChangedConfigurations: configs.ChangedConfigurations,
		ServerProperties:      configs.ServerProperties,
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inventory for cluster %s: %w", cluster, err)
	}

	c.logger.Info().
		Str("cluster", cluster).
		Int("hosts", len(hosts)).
		Int("services", len(services)).
		Msg("fetched cluster inventory")
	return req, nil
}
