package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers rate-limiting step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I send (\d+) GET requests to "([^"]*)"$`, steps.sendRequests)
	ctx.Step(`^the response should carry rate limit headers$`, steps.responseShouldCarryHeaders)
	ctx.Step(`^at least one request should be rate limited$`, steps.atLeastOneRateLimited)
	ctx.Step(`^the rate limited response should ask me to retry later$`, steps.rateLimitedResponseShouldRetry)
	ctx.Step(`^the rate limited error should be "([^"]*)"$`, steps.rateLimitedErrorShouldBe)
}

type ratelimitSteps struct {
	tc TestContext
	// State for tracking across steps
	limited      bool
	retryAfter   string
	limitedError string
}

// sendRequests stops at the first 429 so later assertions can inspect it.
func (s *ratelimitSteps) sendRequests(ctx context.Context, count int, path string) error {
	s.limited = false
	for i := 0; i < count; i++ {
		if err := s.tc.GET(path, nil); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() == 429 {
			s.limited = true
			s.retryAfter = s.tc.GetLastResponseHeader("Retry-After")
			s.limitedError = string(s.tc.GetLastResponseBody())
			return nil
		}
	}
	return nil
}

func (s *ratelimitSteps) responseShouldCarryHeaders(ctx context.Context) error {
	for _, header := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if s.tc.GetLastResponseHeader(header) == "" {
			return fmt.Errorf("missing %s header", header)
		}
	}
	return nil
}

func (s *ratelimitSteps) atLeastOneRateLimited(ctx context.Context) error {
	if !s.limited {
		return fmt.Errorf("no request was rate limited")
	}
	return nil
}

func (s *ratelimitSteps) rateLimitedResponseShouldRetry(ctx context.Context) error {
	if !s.limited {
		return fmt.Errorf("no request was rate limited")
	}
	seconds, err := strconv.Atoi(s.retryAfter)
	if err != nil || seconds < 1 {
		return fmt.Errorf("invalid Retry-After %q", s.retryAfter)
	}
	return nil
}

func (s *ratelimitSteps) rateLimitedErrorShouldBe(ctx context.Context, code string) error {
	if !strings.Contains(s.limitedError, `"error":"`+code+`"`) {
		return fmt.Errorf("expected error %q in %s", code, s.limitedError)
	}
	return nil
}
