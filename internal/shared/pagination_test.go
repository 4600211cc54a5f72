package shared

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaginationDefaultsAndCaps(t *testing.T) {
	p := NewPagination(0, 0, 45)
	assert.Equal(t, Pagination{Page: 1, PerPage: 20, Total: 45, TotalPages: 3}, p)

	assert.Equal(t, MaxPerPage, NewPagination(1, 10_000, 5).PerPage)
}

func TestPaginationBounds(t *testing.T) {
	cases := []struct {
		page, perPage, total int
		start, end           int
	}{
		{1, 20, 45, 0, 20},
		{3, 20, 45, 40, 45},
		{4, 20, 45, 45, 45},
		{1, 20, 0, 0, 0},
	}
	for _, tc := range cases {
		start, end := NewPagination(tc.page, tc.perPage, tc.total).Bounds()
		assert.Equal(t, tc.start, start)
		assert.Equal(t, tc.end, end)
	}
}

func TestPaginationFromQuery(t *testing.T) {
	p, err := PaginationFromQuery(url.Values{"page": {"2"}, "per_page": {"5"}}, 11)
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 2, PerPage: 5, Total: 11, TotalPages: 3}, p)

	_, err = PaginationFromQuery(url.Values{"page": {"zero"}}, 11)
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = PaginationFromQuery(url.Values{"per_page": {"-1"}}, 11)
	assert.EqualError(t, err, "per_page must be a positive integer.")
}
