package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mbolis/agriquest/model"
)

// Resource gives the plain CRUD endpoints of one collection.
type Resource[T any] struct {
	c    *Client
	path string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) item(id int) string {
	return r.path + "/" + strconv.Itoa(id)
}

// List fetches the collection, whatever envelope the backend wraps it in.
func (r *Resource[T]) List(ctx context.Context, query url.Values) (model.Page[T], error) {
	return list[T](ctx, r.c, r.path, query)
}

// All is List without paging information.
func (r *Resource[T]) All(ctx context.Context) ([]T, error) {
	page, err := r.List(ctx, nil)
	return page.Items, err
}

func (r *Resource[T]) Get(ctx context.Context, id int) (item T, err error) {
	err = r.c.do(ctx, http.MethodGet, r.item(id), nil, nil, &item)
	return
}

// Create posts v and returns the stored entity. Backends answering with an
// empty body get v back unchanged.
func (r *Resource[T]) Create(ctx context.Context, v T) (T, error) {
	out := v
	err := r.c.do(ctx, http.MethodPost, r.path, nil, v, &out)
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, id int, v T) (T, error) {
	out := v
	err := r.c.do(ctx, http.MethodPut, r.item(id), nil, v, &out)
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	return r.c.do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}

func list[T any](ctx context.Context, c *Client, path string, query url.Values) (model.Page[T], error) {
	data, err := c.raw(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return model.Page[T]{Items: []T{}}, err
	}
	page, err := DecodePage[T](data)
	if err != nil {
		return page, errors.Wrapf(err, "decoding GET %s", path)
	}
	return page, nil
}

type envelope[T any] struct {
	Data       []T  `json:"data"`
	Items      []T  `json:"items"`
	TotalCount *int `json:"totalCount"`
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
}

// DecodePage accepts both a bare JSON array and a {data, totalCount, page,
// pageSize, totalPages} object. Missing paging fields describe a single page
// holding every item.
func DecodePage[T any](data []byte) (model.Page[T], error) {
	page := model.Page[T]{Items: []T{}}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fillPage(page, nil), nil
	}

	if data[0] == '[' {
		if err := json.Unmarshal(data, &page.Items); err != nil {
			return model.Page[T]{Items: []T{}}, err
		}
		if page.Items == nil {
			page.Items = []T{}
		}
		return fillPage(page, nil), nil
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return model.Page[T]{Items: []T{}}, err
	}
	switch {
	case env.Data != nil:
		page.Items = env.Data
	case env.Items != nil:
		page.Items = env.Items
	}
	page.Page = env.Page
	page.PageSize = env.PageSize
	page.TotalPages = env.TotalPages
	return fillPage(page, env.TotalCount), nil
}

func fillPage[T any](p model.Page[T], total *int) model.Page[T] {
	if total != nil {
		p.TotalCount = *total
	} else {
		p.TotalCount = len(p.Items)
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = len(p.Items)
	}
	if p.TotalPages <= 0 {
		p.TotalPages = 1
	}
	return p
}
