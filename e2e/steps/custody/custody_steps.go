package custody

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	id "custody/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Actor(name string) (id.Address, error)
	AuthenticateAs(name string) error
	GetAccessToken() string
	SetAccessToken(token string)
	SetAssetID(assetID uint64)
	GetAssetID() uint64
}

var roles = map[string]uint64{
	"producer": 0,
	"carrier":  1,
	"retailer": 2,
	"consumer": 3,
}

// RegisterSteps registers actor, asset and transfer step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &custodySteps{tc: tc}

	// Actor registry
	ctx.Step(`^"([^"]*)" registers "([^"]*)" as a (producer|carrier|retailer|consumer)$`, steps.registersActor)
	ctx.Step(`^I register "([^"]*)" as a (producer|carrier|retailer|consumer)$`, steps.registerActor)
	ctx.Step(`^I register "([^"]*)" with role (\d+)$`, steps.registerActorWithRole)
	ctx.Step(`^I disable "([^"]*)"$`, steps.disableActor)
	ctx.Step(`^I look up actor "([^"]*)"$`, steps.lookUpActor)

	// Assets
	ctx.Step(`^I register an asset of type "([^"]*)" from "([^"]*)"$`, steps.registerAsset)
	ctx.Step(`^I transfer the asset to "([^"]*)"$`, steps.transferAsset)
	ctx.Step(`^I transfer asset (\d+) to "([^"]*)"$`, steps.transferAssetByID)
	ctx.Step(`^I request the current holder of the asset$`, steps.requestCurrentHolder)
	ctx.Step(`^I request the asset holder history$`, steps.requestHolderHistory)

	// Assertions
	ctx.Step(`^the current holder should be "([^"]*)"$`, steps.currentHolderShouldBe)
	ctx.Step(`^the holder history should be "([^"]*)"$`, steps.holderHistoryShouldBe)
}

type custodySteps struct {
	tc TestContext
}

// registersActor performs the registration as another actor and restores the
// caller's token afterwards.
func (s *custodySteps) registersActor(ctx context.Context, admin, name, role string) error {
	previous := s.tc.GetAccessToken()
	defer s.tc.SetAccessToken(previous)

	if err := s.tc.AuthenticateAs(admin); err != nil {
		return err
	}
	if err := s.registerActor(ctx, name, role); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 204 {
		return fmt.Errorf("registering %s as %s returned %d: %s", name, role, status, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *custodySteps) registerActor(ctx context.Context, name, role string) error {
	return s.postActor(name, roles[role])
}

func (s *custodySteps) registerActorWithRole(ctx context.Context, name string, role int) error {
	return s.postActor(name, uint64(role))
}

func (s *custodySteps) postActor(name string, role uint64) error {
	address, err := s.tc.Actor(name)
	if err != nil {
		return err
	}
	return s.tc.POST("/actors", map[string]interface{}{
		"address": address.String(),
		"role":    role,
	})
}

func (s *custodySteps) disableActor(ctx context.Context, name string) error {
	address, err := s.tc.Actor(name)
	if err != nil {
		return err
	}
	return s.tc.POST("/actors/"+address.String()+"/disable", nil)
}

func (s *custodySteps) lookUpActor(ctx context.Context, name string) error {
	address, err := s.tc.Actor(name)
	if err != nil {
		return err
	}
	return s.tc.GET("/actors/"+address.String(), nil)
}

func (s *custodySteps) registerAsset(ctx context.Context, assetType, origin string) error {
	err := s.tc.POST("/assets", map[string]interface{}{
		"asset_type":      assetType,
		"production_date": time.Now().Unix(),
		"origin":          origin,
	})
	if err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	value, err := s.tc.GetResponseField("asset_id")
	if err != nil {
		return err
	}
	assetID, ok := value.(float64)
	if !ok {
		return fmt.Errorf("asset_id is %T, want number", value)
	}
	s.tc.SetAssetID(uint64(assetID))
	return nil
}

func (s *custodySteps) transferAsset(ctx context.Context, name string) error {
	return s.transferAssetByID(ctx, int(s.tc.GetAssetID()), name)
}

func (s *custodySteps) transferAssetByID(ctx context.Context, assetID int, name string) error {
	address, err := s.tc.Actor(name)
	if err != nil {
		return err
	}
	return s.tc.POST(fmt.Sprintf("/assets/%d/transfer", assetID), map[string]interface{}{
		"next_holder": address.String(),
	})
}

func (s *custodySteps) requestCurrentHolder(ctx context.Context) error {
	return s.tc.GET(fmt.Sprintf("/assets/%d/holder", s.tc.GetAssetID()), nil)
}

func (s *custodySteps) requestHolderHistory(ctx context.Context) error {
	return s.tc.GET(fmt.Sprintf("/assets/%d/history", s.tc.GetAssetID()), nil)
}

func (s *custodySteps) currentHolderShouldBe(ctx context.Context, name string) error {
	expected, err := s.tc.Actor(name)
	if err != nil {
		return err
	}
	value, err := s.tc.GetResponseField("holder")
	if err != nil {
		return err
	}
	holder, err := id.ParseAddress(fmt.Sprint(value))
	if err != nil {
		return err
	}
	if holder != expected {
		return fmt.Errorf("expected holder %s, got %s", expected, holder)
	}
	return nil
}

func (s *custodySteps) holderHistoryShouldBe(ctx context.Context, names string) error {
	value, err := s.tc.GetResponseField("holder_history")
	if err != nil {
		return err
	}
	history, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("holder_history is %T, want array", value)
	}
	expected := strings.Split(names, ",")
	if len(history) != len(expected) {
		return fmt.Errorf("expected %d holders, got %d: %v", len(expected), len(history), history)
	}
	for i, name := range expected {
		want, err := s.tc.Actor(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		got, err := id.ParseAddress(fmt.Sprint(history[i]))
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("holder %d: expected %s, got %s", i, want, got)
		}
	}
	return nil
}
