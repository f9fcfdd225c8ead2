// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-crawler/internal/crawler"
	"github.com/taibuivan/yomira-crawler/internal/mangadex"
)

/*
TestAdmit covers every combination of budget and policy.
*/
func TestAdmit(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		policy    crawler.LimitPolicy
		want      crawler.Decision
	}{
		{"budget_left_abort_policy", 5, crawler.AbortOnLimit{}, crawler.DecisionProceed},
		{"exhausted_no_policy", 0, nil, crawler.DecisionProceed},
		{"exhausted_ignore", 0, crawler.IgnoreLimit{}, crawler.DecisionProceed},
		{"exhausted_abort", 0, crawler.AbortOnLimit{}, crawler.DecisionAbort},
		{"negative_abort", -1, crawler.AbortOnLimit{}, crawler.DecisionAbort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := crawler.Admit(context.Background(), mangadex.RateSignal{Remaining: tt.remaining}, tt.policy)
			assert.Equal(t, tt.want, decision)
		})
	}
}

/*
TestAdmit_PolicyArguments skips the policy while budget remains and passes the advised wait otherwise.
*/
func TestAdmit_PolicyArguments(t *testing.T) {
	calls := 0
	var seen time.Duration
	policy := crawler.LimitPolicyFunc(func(_ context.Context, retryAfter time.Duration) crawler.Decision {
		calls++
		seen = retryAfter
		return crawler.DecisionAbort
	})

	crawler.Admit(context.Background(), mangadex.RateSignal{Remaining: 1, RetryAfter: time.Second}, policy)
	assert.Zero(t, calls)

	decision := crawler.Admit(context.Background(), mangadex.RateSignal{Remaining: 0, RetryAfter: 1500 * time.Millisecond}, policy)
	assert.Equal(t, crawler.DecisionAbort, decision)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1500*time.Millisecond, seen)
	assert.Equal(t, "abort", decision.String())
}

/*
TestFetchResult_JSON exposes page sizes and failure messages, never page bytes.
*/
func TestFetchResult_JSON(t *testing.T) {
	result := crawler.FetchResult{
		ChapterID:     "c1",
		DeclaredPages: 2,
		Scheduled:     2,
		Pages:         []crawler.Page{{Index: 1, Data: []byte("abcd")}},
		Failed:        []crawler.PageFailure{{Index: 2, Digest: "d2", Err: errors.New("unexpected status 500")}},
	}

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"chapter_id": "c1",
		"declared_pages": 2,
		"scheduled": 2,
		"pages": [{"index": 1, "size": 4}],
		"failed": [{"index": 2, "digest": "d2", "error": "unexpected status 500"}]
	}`, string(raw))
}
