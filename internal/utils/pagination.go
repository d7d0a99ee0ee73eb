package utils

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/config"
	"github.com/yukikurage/taskhub-api/internal/constants"
)

const (
	pageParam     = "page"
	pageSizeParam = "page_size"
)

// ErrInvalidPage is returned for a page number that is not a positive
// integer or lies beyond the last page.
var ErrInvalidPage = errors.New("invalid page")

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// GetPaginationParams extracts page and page_size from the request. A bad
// page is an error; a bad page_size falls back to the default and a large
// one is clamped to the maximum.
func GetPaginationParams(c *gin.Context, cfg config.PaginationConfig) (PaginationParams, error) {
	page := constants.MinPage
	if raw, ok := c.GetQuery(pageParam); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < constants.MinPage {
			return PaginationParams{}, ErrInvalidPage
		}
		page = n
	}

	pageSize := cfg.DefaultPageSize
	if raw, ok := c.GetQuery(pageSizeParam); ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}
	if pageSize > cfg.MaxPageSize {
		pageSize = cfg.MaxPageSize
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}, nil
}

// CheckRange rejects pages past the end. The first page is always valid,
// even when there are no results.
func (p PaginationParams) CheckRange(total int64) error {
	if p.Page > constants.MinPage && int64(p.Offset) >= total {
		return ErrInvalidPage
	}
	return nil
}

// PageLinks builds absolute next/previous URLs for the current request.
// Missing links are nil.
func PageLinks(c *gin.Context, p PaginationParams, total int64) (next, previous *string) {
	if int64(p.Offset+p.PageSize) < total {
		link := pageURL(c, p.Page+1)
		next = &link
	}
	if p.Page > constants.MinPage {
		link := pageURL(c, p.Page-1)
		previous = &link
	}
	return next, previous
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page == constants.MinPage {
		query.Del(pageParam)
	} else {
		query.Set(pageParam, strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
