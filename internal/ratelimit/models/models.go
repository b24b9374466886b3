package models

import (
	"time"

	id "custody/pkg/domain"
)

// Class groups endpoints that share a limit.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
)

// Limit is a sliding-window request budget.
type Limit struct {
	RequestsPerWindow int
	Window            time.Duration
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a rejected caller should wait, at least one second.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d < time.Second {
		return time.Second
	}
	return d.Truncate(time.Second)
}

// CallerKey buckets requests by authenticated caller.
func CallerKey(class Class, caller id.Address) string {
	return "rl:" + string(class) + ":caller:" + caller.String()
}

// IPKey buckets requests that carry no caller.
func IPKey(class Class, ip string) string {
	return "rl:" + string(class) + ":ip:" + ip
}
