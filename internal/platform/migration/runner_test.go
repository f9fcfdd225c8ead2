// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-crawler/internal/platform/migration"
)

/*
TestToPgx5DSN covers the scheme rewrite golang-migrate needs.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"postgres_scheme", "postgres://u:p@db:5432/crawler", "pgx5://u:p@db:5432/crawler"},
		{"postgresql_scheme", "postgresql://u:p@db/crawler?sslmode=disable", "pgx5://u:p@db/crawler?sslmode=disable"},
		{"already_pgx5", "pgx5://u@db/crawler", "pgx5://u@db/crawler"},
		{"keyword_dsn", "host=db user=u dbname=crawler", "host=db user=u dbname=crawler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
		})
	}
}
