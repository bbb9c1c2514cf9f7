package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/cart-service/internal/repository"
)

const (
	defaultTimeout = 5 * time.Second
	maxErrorBody   = 512
)

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client reads the storefront catalog over its JSON HTTP API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("catalog base url is not configured")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base url %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	if err := c.getJSON(ctx, "products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetStock(ctx context.Context, productID int) (*entity.Stock, error) {
	var stock entity.Stock
	if err := c.getJSON(ctx, "stock/"+strconv.Itoa(productID), &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", repository.ErrCatalogFailed, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("GET %s: %w", path, repository.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: GET %s returned %d: %s", repository.ErrCatalogFailed, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", repository.ErrCatalogFailed, path, err)
	}
	return nil
}
