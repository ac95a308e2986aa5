// Package client implements a remote catalog collaborator over HTTP. It is
// the network-facing counterpart of the store backends: read paths are
// cached and retried, and list fetches degrade to empty result sets so the
// editor keeps working when the catalog service is unreachable.
package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/promopress/promopress/pkg/cache"
	"github.com/promopress/promopress/pkg/catalog"
	"github.com/promopress/promopress/pkg/httputil"
)

// Client provides access to a remote catalog API.
// It handles HTTP requests with caching and automatic retries.
type Client struct {
	*httputil.Client
	baseURL string
}

// Option configures a Client.
type Option func(*options)

type options struct {
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// WithCache sets the cache backend for read paths.
func WithCache(c cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithTTL overrides the cache TTL for read paths.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(o *options) { o.headers["Authorization"] = "Bearer " + token }
}

// NewClient creates a catalog client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	o := &options{
		cache:   cache.NewNullCache(),
		ttl:     cache.TTLCatalog,
		headers: map[string]string{"Accept": "application/json"},
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Client{
		Client:  httputil.NewClient(o.cache, o.ttl, o.headers),
		baseURL: baseURL,
	}
}

// FetchProducts lists products, optionally filtered by a search term and a
// category. A failed fetch returns an empty slice: the caller renders an
// empty catalog rather than failing the whole editing session.
func (c *Client) FetchProducts(ctx context.Context, search, category string) []catalog.Product {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if category != "" {
		q.Set("category", category)
	}
	endpoint := c.baseURL + "/api/products"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	key := "products:" + search + ":" + category
	var products []catalog.Product
	err := c.Cached(ctx, key, false, &products, func() error {
		return c.Get(ctx, endpoint, &products)
	})
	if err != nil {
		return []catalog.Product{}
	}
	return products
}

// FetchTemplates lists a user's page templates. Failures degrade to an
// empty slice.
func (c *Client) FetchTemplates(ctx context.Context, userID string) []catalog.Template {
	key := "templates:" + userID
	var templates []catalog.Template
	err := c.Cached(ctx, key, false, &templates, func() error {
		return c.Get(ctx, fmt.Sprintf("%s/api/users/%s/templates", c.baseURL, url.PathEscape(userID)), &templates)
	})
	if err != nil {
		return []catalog.Template{}
	}
	return templates
}

// FetchLogos lists a user's uploaded logos. Failures degrade to an empty
// slice.
func (c *Client) FetchLogos(ctx context.Context, userID string) []catalog.Logo {
	key := "logos:" + userID
	var logos []catalog.Logo
	err := c.Cached(ctx, key, false, &logos, func() error {
		return c.Get(ctx, fmt.Sprintf("%s/api/users/%s/logos", c.baseURL, url.PathEscape(userID)), &logos)
	})
	if err != nil {
		return []catalog.Logo{}
	}
	return logos
}

// FetchActiveLogo returns the user's active logo, or httputil.ErrNotFound
// when the user has none.
func (c *Client) FetchActiveLogo(ctx context.Context, userID string) (catalog.Logo, error) {
	var logo catalog.Logo
	err := c.Get(ctx, fmt.Sprintf("%s/api/users/%s/logos/active", c.baseURL, url.PathEscape(userID)), &logo)
	if err != nil {
		return catalog.Logo{}, err
	}
	return logo, nil
}

// CreateCampaign persists a new campaign and returns it with server-assigned
// fields filled in.
func (c *Client) CreateCampaign(ctx context.Context, campaign catalog.Campaign) (catalog.Campaign, error) {
	var created catalog.Campaign
	err := c.PostJSON(ctx, c.baseURL+"/api/campaigns", campaign, &created)
	if err != nil {
		return catalog.Campaign{}, err
	}
	return created, nil
}

// AddCampaignProduct appends a product to an existing campaign's working set.
func (c *Client) AddCampaignProduct(ctx context.Context, campaignID string, cp catalog.CampaignProduct) (catalog.CampaignProduct, error) {
	var created catalog.CampaignProduct
	endpoint := fmt.Sprintf("%s/api/campaigns/%s/products", c.baseURL, url.PathEscape(campaignID))
	err := c.PostJSON(ctx, endpoint, cp, &created)
	if err != nil {
		return catalog.CampaignProduct{}, err
	}
	return created, nil
}

// UploadLogo uploads a logo image for the user and returns the stored logo
// record.
func (c *Client) UploadLogo(ctx context.Context, userID, fileName string, file io.Reader) (catalog.Logo, error) {
	var logo catalog.Logo
	endpoint := fmt.Sprintf("%s/api/users/%s/logos", c.baseURL, url.PathEscape(userID))
	err := c.PostMultipart(ctx, endpoint, "logo", fileName, file, nil, &logo)
	if err != nil {
		return catalog.Logo{}, err
	}
	return logo, nil
}
