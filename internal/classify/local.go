package classify

import (
	"context"

	"github.com/veil-waf/framegate/internal/urlrisk"
)

// Local decides with the in-process risk engine.
type Local struct{}

func (Local) Name() string { return "local" }

func (Local) Check(_ context.Context, rawURL string) *Result {
	res := FromVerdict(urlrisk.Assess(rawURL))
	res.Strategy = "local"
	return res
}
