package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxPerPage caps page size regardless of what the client asks for.
const MaxPerPage = 100

// Query holds parsed list-endpoint parameters.
type Query struct {
	Page      int
	PerPage   int
	Search    string
	SortBy    string
	SortOrder string // "asc" or "desc"
}

// Params describes the per-endpoint pagination contract.
type Params struct {
	DefaultPerPage int
	DefaultSortBy  string
	// AllowedSorts maps accepted sort_by values to the column used in ORDER BY.
	// Unrecognized sort_by falls back silently to DefaultSortBy.
	AllowedSorts map[string]string
}

// Parse reads page, per_page, search, sort_by and sort_order from the request.
func Parse(c *gin.Context, p Params) Query {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(p.DefaultPerPage)))
	if perPage < 1 {
		perPage = p.DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	sortBy := c.DefaultQuery("sort_by", p.DefaultSortBy)
	column, ok := p.AllowedSorts[sortBy]
	if !ok {
		column = p.AllowedSorts[p.DefaultSortBy]
	}

	sortOrder := strings.ToLower(c.DefaultQuery("sort_order", "desc"))
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return Query{
		Page:      page,
		PerPage:   perPage,
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    column,
		SortOrder: sortOrder,
	}
}

// Offset returns the SQL offset for the query.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// OrderClause returns "column ASC|DESC" for interpolation into ORDER BY.
// Safe because SortBy only ever holds values from the allow-list.
func (q Query) OrderClause() string {
	dir := "DESC"
	if q.SortOrder == "asc" {
		dir = "ASC"
	}
	return q.SortBy + " " + dir
}

// Meta is the pagination envelope returned alongside list data.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta builds pagination metadata from a total row count.
func NewMeta(q Query, total int) Meta {
	pages := total / q.PerPage
	if total%q.PerPage != 0 {
		pages++
	}
	return Meta{Page: q.Page, PerPage: q.PerPage, Total: total, TotalPages: pages}
}
