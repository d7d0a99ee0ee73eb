package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/config"
)

var testPagination = config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100}

func contextFor(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		page     int
		pageSize int
		wantErr  bool
	}{
		{"defaults", "/tasks", 1, 10, false},
		{"explicit", "/tasks?page=3&page_size=20", 3, 20, false},
		{"clamped page size", "/tasks?page_size=500", 1, 100, false},
		{"non numeric page size falls back", "/tasks?page_size=abc", 1, 10, false},
		{"zero page size falls back", "/tasks?page_size=0", 1, 10, false},
		{"zero page", "/tasks?page=0", 0, 0, true},
		{"non numeric page", "/tasks?page=last", 0, 0, true},
		{"negative page", "/tasks?page=-2", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := GetPaginationParams(contextFor(tt.target), testPagination)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.pageSize, params.PageSize)
			assert.Equal(t, (tt.page-1)*tt.pageSize, params.Offset)
		})
	}
}

func TestCheckRange(t *testing.T) {
	first := PaginationParams{Page: 1, PageSize: 10}
	assert.NoError(t, first.CheckRange(0), "first page is valid even when empty")

	second := PaginationParams{Page: 2, PageSize: 10, Offset: 10}
	assert.NoError(t, second.CheckRange(11))
	assert.ErrorIs(t, second.CheckRange(10), ErrInvalidPage)
}

func TestPageLinks(t *testing.T) {
	c := contextFor("/tasks?page=2&page_size=5&search=milk")
	c.Request.Host = "api.example.com"
	params, err := GetPaginationParams(c, testPagination)
	require.NoError(t, err)

	next, previous := PageLinks(c, params, 12)
	require.NotNil(t, next)
	require.NotNil(t, previous)
	assert.Equal(t, "http://api.example.com/tasks?page=3&page_size=5&search=milk", *next)
	assert.Equal(t, "http://api.example.com/tasks?page_size=5&search=milk", *previous)

	c = contextFor("/tasks?page=3&page_size=5")
	c.Request.Host = "api.example.com"
	c.Request.Header.Set("X-Forwarded-Proto", "https")
	params, err = GetPaginationParams(c, testPagination)
	require.NoError(t, err)

	next, previous = PageLinks(c, params, 12)
	assert.Nil(t, next)
	require.NotNil(t, previous)
	assert.Equal(t, "https://api.example.com/tasks?page=2&page_size=5", *previous)
}

func TestPageLinks_SinglePage(t *testing.T) {
	c := contextFor("/teams")
	params, err := GetPaginationParams(c, testPagination)
	require.NoError(t, err)

	next, previous := PageLinks(c, params, 3)
	assert.Nil(t, next)
	assert.Nil(t, previous)
}
