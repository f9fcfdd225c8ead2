// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-crawler/pkg/query"
)

/*
TestStringSlice merges repeated and comma separated values.
*/
func TestStringSlice(t *testing.T) {
	assert.Nil(t, query.StringSlice())
	assert.Nil(t, query.StringSlice("", " , "))
	assert.Equal(t, []string{"a", "b", "c"}, query.StringSlice("a, b", "c,a"))
}
