package sim

import (
	"math"

	"github.com/pthm-cable/pond/config"
)

// predationHazard computes the additive per-host hazard from predation.
// The base rate is a type-II functional response shared across the whole
// population: attack*density / (1 + attack*handling*N). Size selectivity is
// one of two exclusive policies:
//
//   - window: the base hazard applies uniformly inside the gape window and
//     not at all outside it.
//   - gradient: the base hazard applies to every host, scaled by
//     exp(-slope*shell).
//
// With zero predator density the contribution is exactly zero under both.
func predationHazard(p *config.PredationConfig, n int, shell float64) float64 {
	if p.Density <= 0 {
		return 0
	}
	base := p.Attack * p.Density / (1 + p.Attack*p.Handling*float64(n))

	switch p.Policy {
	case config.PolicyWindow:
		if shell >= p.GapeMin && shell <= p.GapeUpper() {
			return base
		}
		return 0
	case config.PolicyGradient:
		return base * math.Exp(-p.Slope*shell)
	}
	// Unreachable: Validate rejects unknown policies before the first tick.
	return 0
}
