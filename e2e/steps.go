package e2e

import (
	"github.com/cucumber/godog"

	"custody/e2e/steps/auth"
	"custody/e2e/steps/common"
	"custody/e2e/steps/custody"
	"custody/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background, generic requests and assertions
	common.RegisterSteps(ctx, tc)

	// Actor registry, assets and transfers
	custody.RegisterSteps(ctx, tc)

	// Token revocation
	auth.RegisterSteps(ctx, tc)

	ratelimit.RegisterSteps(ctx, tc)
}
