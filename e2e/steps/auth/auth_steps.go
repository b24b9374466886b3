package auth

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetAccessToken() string
}

// RegisterSteps registers token lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I revoke my token$`, steps.revokeToken)
	ctx.Step(`^I GET "([^"]*)" with invalid token "([^"]*)"$`, steps.getWithInvalidToken)
	ctx.Step(`^the token should be rejected$`, steps.tokenShouldBeRejected)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) revokeToken(ctx context.Context) error {
	if s.tc.GetAccessToken() == "" {
		return fmt.Errorf("no token to revoke")
	}
	return s.tc.POST("/auth/revoke", nil)
}

func (s *authSteps) getWithInvalidToken(ctx context.Context, path, token string) error {
	return s.tc.GET(path, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func (s *authSteps) tokenShouldBeRejected(ctx context.Context) error {
	if status := s.tc.GetLastResponseStatus(); status != 401 {
		return fmt.Errorf("expected 401 for a rejected token, got %d: %s", status, s.tc.GetLastResponseBody())
	}
	return nil
}
