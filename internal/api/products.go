package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/shopzone/storefront/internal/model"
)

type ProductFilter struct {
	Keyword  string
	MinPrice string
	MaxPrice string
	Page     int
	Limit    int
}

func (f ProductFilter) query() url.Values {
	q := url.Values{}
	if f.Keyword != "" {
		q.Set("keyword", f.Keyword)
	}
	if f.MinPrice != "" {
		q.Set("minPrice", f.MinPrice)
	}
	if f.MaxPrice != "" {
		q.Set("maxPrice", f.MaxPrice)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// PageLink renders the filter as a relative query string for the given page,
// keeping the active filters. Limit stays out; each page picks its own.
func (f ProductFilter) PageLink(page int) string {
	f.Page = page
	f.Limit = 0
	return "?" + f.query().Encode()
}

type ProductList struct {
	Products []model.Product `json:"products"`
	Page     int             `json:"page"`
	Pages    int             `json:"pages"`
	Total    int             `json:"total"`
}

func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) (*ProductList, error) {
	var resp ProductList
	if err := c.doJSON(ctx, http.MethodGet, "/products", filter.query(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProduct tolerates both a bare product body and a {"product": ...}
// envelope; the backend has shipped both shapes.
func (c *Client) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/products/"+id, nil, nil, &raw); err != nil {
		return nil, err
	}

	var envelope struct {
		Product *model.Product `json:"product"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Product != nil && envelope.Product.ID != "" {
		return envelope.Product, nil
	}

	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}

// ProductForm is the multipart payload for the admin create/update endpoints.
// Image is optional; when nil the backend keeps the existing image.
type ProductForm struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Image       io.Reader
	ImageName   string
}

func (c *Client) CreateProduct(ctx context.Context, form ProductForm) (*model.Product, error) {
	return c.sendProductForm(ctx, http.MethodPost, "/products", form)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, form ProductForm) (*model.Product, error) {
	return c.sendProductForm(ctx, http.MethodPut, "/products/"+id, form)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/products/"+id, nil, nil, nil)
}

func (c *Client) sendProductForm(ctx context.Context, method, path string, form ProductForm) (*model.Product, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":        form.Name,
		"description": form.Description,
		"price":       form.Price.String(),
		"stock":       strconv.Itoa(form.Stock),
		"category":    form.Category,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}
	if form.Image != nil {
		part, err := w.CreateFormFile("image", form.ImageName)
		if err != nil {
			return nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(part, form.Image); err != nil {
			return nil, fmt.Errorf("copy image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var p model.Product
	if err := c.do(req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
