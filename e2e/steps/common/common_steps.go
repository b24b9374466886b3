package common

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/cucumber/godog"

	id "custody/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	SetActor(name string, address id.Address)
	AuthenticateAs(name string) error
	SetAccessToken(token string)
}

// RegisterSteps registers background, request and assertion steps shared by
// every feature.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background steps
	ctx.Step(`^the custody service is running$`, steps.serviceIsRunning)
	ctx.Step(`^the configured administrator "([^"]*)"$`, steps.configuredAdministrator)
	ctx.Step(`^a fresh actor "([^"]*)"$`, steps.freshActor)
	ctx.Step(`^I am authenticated as "([^"]*)"$`, steps.authenticatedAs)
	ctx.Step(`^I am not authenticated$`, steps.notAuthenticated)

	// Generic requests
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the error should be "([^"]*)"$`, steps.errorShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/healthz", nil); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("health check returned %d: %s", status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) configuredAdministrator(ctx context.Context, name string) error {
	raw := os.Getenv("CUSTODY_ADMIN_ADDRESS")
	if raw == "" {
		return fmt.Errorf("CUSTODY_ADMIN_ADDRESS must match the server under test")
	}
	address, err := id.ParseAddress(raw)
	if err != nil {
		return err
	}
	s.tc.SetActor(name, address)
	return nil
}

// freshActor picks a random address so scenarios never collide on a shared
// server.
func (s *commonSteps) freshActor(ctx context.Context, name string) error {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	address, err := id.ParseAddress("0x" + hex.EncodeToString(buf))
	if err != nil {
		return err
	}
	s.tc.SetActor(name, address)
	return nil
}

func (s *commonSteps) authenticatedAs(ctx context.Context, name string) error {
	return s.tc.AuthenticateAs(name)
}

func (s *commonSteps) notAuthenticated(ctx context.Context) error {
	s.tc.SetAccessToken("")
	return nil
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, expected int) error {
	if actual := s.tc.GetLastResponseStatus(); actual != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, actual, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if actual := fmt.Sprint(value); !strings.EqualFold(actual, expected) {
		return fmt.Errorf("expected %s=%q, got %q", field, expected, actual)
	}
	return nil
}

func (s *commonSteps) errorShouldBe(ctx context.Context, expected string) error {
	return s.fieldShouldBe(ctx, "error", expected)
}
