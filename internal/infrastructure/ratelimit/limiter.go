package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"

	"shipshape/internal/core/domain"
)

const shardCount = 32

// Policy is the fixed-window quota for one subscription plan.
type Policy struct {
	Window time.Duration
	Limit  int
}

type window struct {
	start time.Time
	count int
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

// Limiter admits or rejects requests against a per-identifier fixed-window
// counter. State is sharded by identifier hash so concurrent callers only
// contend when they land on the same shard; there is no global lock.
// Windows are not smoothed: a burst straddling a window boundary can see up
// to twice the limit, which is the accepted trade-off of a fixed window.
type Limiter struct {
	policies map[domain.Plan]Policy
	shards   [shardCount]*shard
	now      func() time.Time
}

// DefaultPolicies returns the product plan quotas.
func DefaultPolicies() map[domain.Plan]Policy {
	return map[domain.Plan]Policy{
		domain.PlanProfessional: {Window: 15 * time.Minute, Limit: 100},
		domain.PlanEnterprise:   {Window: 15 * time.Minute, Limit: 500},
	}
}

func NewLimiter(policies map[domain.Plan]Policy) *Limiter {
	l := &Limiter{
		policies: policies,
		now:      time.Now,
	}
	for i := range l.shards {
		l.shards[i] = &shard{windows: make(map[string]*window)}
	}
	return l
}

// Decision reports the outcome of one admission attempt together with the
// header values the HTTP layer must expose.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// Admit counts one request for identifier under plan's policy. The request
// that lands exactly on the limit is still allowed; the next one in the
// same window is the first denial.
func (l *Limiter) Admit(identifier string, plan domain.Plan) Decision {
	policy, ok := l.policies[plan]
	if !ok {
		// Unknown plan falls back to the strictest configured policy.
		policy = l.strictest()
	}

	sh := l.shards[shardIndex(identifier)]
	now := l.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	w, exists := sh.windows[identifier]
	if !exists || now.Sub(w.start) >= policy.Window {
		w = &window{start: now, count: 1}
		sh.windows[identifier] = w
		return Decision{
			Allowed:   true,
			Limit:     policy.Limit,
			Remaining: policy.Limit - 1,
			Reset:     w.start.Add(policy.Window),
		}
	}

	w.count++
	reset := w.start.Add(policy.Window)
	if w.count <= policy.Limit {
		return Decision{
			Allowed:   true,
			Limit:     policy.Limit,
			Remaining: policy.Limit - w.count,
			Reset:     reset,
		}
	}

	return Decision{
		Allowed:    false,
		Limit:      policy.Limit,
		Remaining:  0,
		Reset:      reset,
		RetryAfter: reset.Sub(now),
	}
}

func (l *Limiter) strictest() Policy {
	var out Policy
	for _, p := range l.policies {
		if out.Limit == 0 || p.Limit < out.Limit {
			out = p
		}
	}
	if out.Limit == 0 {
		out = Policy{Window: 15 * time.Minute, Limit: 100}
	}
	return out
}

func shardIndex(identifier string) int {
	h := fnv.New32a()
	h.Write([]byte(identifier))
	return int(h.Sum32() % shardCount)
}
