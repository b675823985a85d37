// Package pagination parses page/limit query parameters and builds list metadata.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultPage  = 1
)

// Params is a 1-indexed page request.
type Params struct {
	Page  int
	Limit int
}

// Skip returns the number of documents to skip for the page.
func (p Params) Skip() int64 {
	if p.Page <= 1 {
		return 0
	}
	return int64((p.Page - 1) * p.Limit)
}

// Normalize clamps invalid values to the defaults.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	return p
}

// Meta is returned next to list results.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewMeta(p Params, total int) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// FromGin reads ?page= and ?limit= from the request.
func FromGin(c *gin.Context) Params {
	return Params{Page: intQuery(c, "page", DefaultPage), Limit: intQuery(c, "limit", DefaultLimit)}.Normalize()
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// Window applies p to an in-memory slice length and returns [start, end).
func Window(p Params, n int) (int, int) {
	start := int(p.Skip())
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
