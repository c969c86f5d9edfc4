package game

import "github.com/sanguosha/engine/internal/config"

// buildRegistry assembles the full card-effect registry: hand-written
// handlers first (never shadowed), then data-driven effects filling
// every name GameData.CardEffects lists that isn't already claimed —
// spec.md §4.3's idempotent-registration contract. A nil GameData
// leaves the registry with only the hand-written set, which is enough
// for headless battles run against the minimal built-in catalog.
func buildRegistry(data *config.GameData) *registry {
	r := newRegistry()
	registerBuiltinEffects(r)
	if data == nil {
		return r
	}
	for name, cfg := range data.CardEffects {
		r.registerDataDriven(name, buildDataDrivenEffect(name, cfg))
	}
	return r
}
