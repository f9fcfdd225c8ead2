// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import (
	"context"
	"time"

	"github.com/taibuivan/yomira-crawler/internal/mangadex"
)

// # Rate Limit Gate

// Decision is the outcome of the rate gate.
type Decision int

const (
	// DecisionProceed lets the chapter fetch continue.
	DecisionProceed Decision = iota
	// DecisionAbort abandons the chapter fetch for this call.
	DecisionAbort
)

func (decision Decision) String() string {
	if decision == DecisionAbort {
		return "abort"
	}
	return "proceed"
}

// LimitPolicy decides what to do when the upstream budget is exhausted.
type LimitPolicy interface {
	OnLimitReached(ctx context.Context, retryAfter time.Duration) Decision
}

// LimitPolicyFunc adapts a function to [LimitPolicy].
type LimitPolicyFunc func(ctx context.Context, retryAfter time.Duration) Decision

// OnLimitReached calls f.
func (f LimitPolicyFunc) OnLimitReached(ctx context.Context, retryAfter time.Duration) Decision {
	return f(ctx, retryAfter)
}

// IgnoreLimit proceeds regardless of the counters.
type IgnoreLimit struct{}

func (IgnoreLimit) OnLimitReached(context.Context, time.Duration) Decision { return DecisionProceed }

// AbortOnLimit abandons the fetch whenever the budget is exhausted.
type AbortOnLimit struct{}

func (AbortOnLimit) OnLimitReached(context.Context, time.Duration) Decision { return DecisionAbort }

/*
Admit evaluates the rate signal of one metadata response.

A positive remaining budget proceeds without consulting the policy. An exhausted
budget is handed to the policy; a nil policy proceeds.
*/
func Admit(ctx context.Context, signal mangadex.RateSignal, policy LimitPolicy) Decision {
	if signal.Remaining > 0 {
		return DecisionProceed
	}

	if policy == nil {
		return DecisionProceed
	}

	return policy.OnLimitReached(ctx, signal.RetryAfter)
}
