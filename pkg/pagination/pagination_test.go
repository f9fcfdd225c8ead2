// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-crawler/pkg/pagination"
)

/*
TestFromRequest clamps bad input to the defaults.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		query  string
		page   int
		limit  int
		offset int
	}{
		{"", 1, 20, 0},
		{"page=3&limit=10", 3, 10, 20},
		{"page=-1&limit=0", 1, 20, 0},
		{"page=2&limit=1000", 2, 100, 100},
		{"page=two&limit=x", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			params := pagination.FromRequest(httptest.NewRequest("GET", "/?"+tt.query, nil))
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
			assert.Equal(t, tt.offset, params.Offset())
		})
	}
}

/*
TestNewMeta rounds the page count up and flags a following page.
*/
func TestNewMeta(t *testing.T) {
	first := pagination.NewMeta(1, 10, 21)
	assert.Equal(t, 3, first.TotalPages)
	assert.True(t, first.HasMore)

	last := pagination.Params{Page: 3, Limit: 10}.Meta(21)
	assert.Equal(t, 3, last.TotalPages)
	assert.False(t, last.HasMore)

	empty := pagination.NewMeta(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasMore)
}
