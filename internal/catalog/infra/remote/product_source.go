// Package remote loads the catalog from a REST endpoint returning a JSON
// array of products, such as https://fakestoreapi.com/products.
package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/pkg/errors"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

type ProductSource struct {
	url    string
	client *http.Client
}

// NewProductSource returns a source fetching url. A zero timeout leaves the
// request unbounded apart from ctx.
func NewProductSource(url string, timeout time.Duration) *ProductSource {
	return &ProductSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *ProductSource) List(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch catalog from %s", s.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, errors.Errorf("fetch catalog from %s: unexpected status %d", s.url, resp.StatusCode)
	}

	var products []domain.Product
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return products, nil
}
