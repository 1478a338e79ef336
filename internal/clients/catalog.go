package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// Product is the subset of a catalog product the storefront prices and
// displays from.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug,omitempty"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

// ListProducts, GetProduct and GetProductBySlug return the upstream response
// as is, whatever its status. Only transport failures are errors.
func (cc *CatalogClient) ListProducts(ctx context.Context, rawQuery string, headers http.Header) (*http.Response, error) {
	return cc.forward(ctx, "list products", "/api/products", rawQuery, headers)
}

func (cc *CatalogClient) GetProduct(ctx context.Context, id, rawQuery string, headers http.Header) (*http.Response, error) {
	return cc.forward(ctx, "get product", "/api/products/"+url.PathEscape(id), rawQuery, headers)
}

func (cc *CatalogClient) GetProductBySlug(ctx context.Context, slug, rawQuery string, headers http.Header) (*http.Response, error) {
	return cc.forward(ctx, "get product by slug", "/api/products/slug/"+url.PathEscape(slug), rawQuery, headers)
}

func (cc *CatalogClient) forward(ctx context.Context, op, path, rawQuery string, headers http.Header) (*http.Response, error) {
	resp, err := cc.c.Do(ctx, http.MethodGet, path, rawQuery, nil, headers)
	if err != nil {
		return nil, transportError(op, cc.c.Name, err)
	}
	return resp, nil
}

// LookupProduct decodes a single product. An upstream 404 comes back as a
// *RequestError with Status 404.
func (cc *CatalogClient) LookupProduct(ctx context.Context, id string) (*Product, error) {
	var out Product
	err := cc.c.doJSON(ctx, call{
		Op:       "lookup product",
		Method:   http.MethodGet,
		Path:     "/api/products/" + url.PathEscape(id),
		Fallback: "Failed to fetch product",
	}, nil, &out)
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}
