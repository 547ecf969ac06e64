package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var testParams = Params{
	DefaultPerPage: 15,
	DefaultSortBy:  "created_at",
	AllowedSorts: map[string]string{
		"name":       "name",
		"created_at": "created_at",
	},
}

func parse(t *testing.T, rawQuery string) Query {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return Parse(c, testParams)
}

func TestParseDefaults(t *testing.T) {
	q := parse(t, "")
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 15, q.PerPage)
	assert.Equal(t, "created_at", q.SortBy)
	assert.Equal(t, "desc", q.SortOrder)
	assert.Empty(t, q.Search)
}

func TestParsePerPageCap(t *testing.T) {
	q := parse(t, "per_page=5000")
	assert.Equal(t, MaxPerPage, q.PerPage)
}

func TestParseInvalidValuesFallBack(t *testing.T) {
	q := parse(t, "page=-3&per_page=0&sort_order=sideways")
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 15, q.PerPage)
	assert.Equal(t, "desc", q.SortOrder)
}

func TestParseUnknownSortFallsBackSilently(t *testing.T) {
	q := parse(t, "sort_by=password_hash")
	assert.Equal(t, "created_at", q.SortBy)
}

func TestOrderClause(t *testing.T) {
	q := parse(t, "sort_by=name&sort_order=asc")
	assert.Equal(t, "name ASC", q.OrderClause())
}

func TestOffset(t *testing.T) {
	q := parse(t, "page=3&per_page=10")
	assert.Equal(t, 20, q.Offset())
}

func TestNewMeta(t *testing.T) {
	q := Query{Page: 2, PerPage: 10}

	meta := NewMeta(q, 35)
	assert.Equal(t, 4, meta.TotalPages)

	meta = NewMeta(q, 30)
	assert.Equal(t, 3, meta.TotalPages)

	meta = NewMeta(q, 0)
	assert.Equal(t, 0, meta.TotalPages)
}
