package rules

import (
	"fmt"
	"strings"

	"github.com/pattarpon/pokescan/internal/domain/model"
)

// Engine evaluates records against criteria snapshots. It carries no
// state of its own; the criteria snapshot passed to Evaluate governs
// the outcome.
type Engine struct{}

// NewEngine creates a rule engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate scores a record against the active profile. Checks run in a
// fixed order and the first failing one wins:
//
//	shiny override, missing profile, species allow-list, required
//	natures, per-stat minimums, IV total, IV percentage.
func (e *Engine) Evaluate(rec *model.Record, c Criteria) Verdict {
	if c.AlwaysAlertShiny && rec.Shiny {
		return Shiny()
	}

	profile, ok := c.Profiles[c.ActiveProfile]
	if !ok {
		return Skip("No active profile")
	}

	if len(profile.Species) > 0 && !containsFold(profile.Species, rec.SpeciesName) {
		return Skip("Species mismatch")
	}

	if len(profile.RequiredNatures) > 0 {
		if rec.Nature == nil {
			return Skip("Missing nature")
		}
		if !containsFold(profile.RequiredNatures, *rec.Nature) {
			return Skip("Nature mismatch")
		}
	}

	// Minimum keys that name no known stat are silently ignored, matching
	// the permissive handling of hand-edited criteria files.
	for key, minValue := range profile.MinIVs {
		actual, known := ivValue(key, rec.IVs)
		if !known {
			continue
		}
		if actual < minValue {
			return Skip(fmt.Sprintf("IV %s too low", key))
		}
	}

	total := rec.IVs.Sum()

	if profile.MinIVTotal != nil && total < *profile.MinIVTotal {
		return Skip(fmt.Sprintf("IV total %d < %d", total, *profile.MinIVTotal))
	}

	if profile.MinIVPercent != nil {
		percent := ivPercent(total)
		if percent < *profile.MinIVPercent {
			return Skip(fmt.Sprintf("IV %d%% < %d%%", percent, *profile.MinIVPercent))
		}
	}

	if profile.Notes != nil && *profile.Notes != "" {
		return CatchIt(*profile.Notes)
	}
	return CatchIt("Meets criteria")
}

// ivValue resolves a stat name to its IV, reporting false for unknown keys.
func ivValue(key string, ivs model.IVs) (int, bool) {
	switch strings.ToLower(key) {
	case "hp":
		return ivs.HP, true
	case "atk":
		return ivs.Atk, true
	case "def":
		return ivs.Def, true
	case "spa":
		return ivs.SpA, true
	case "spd":
		return ivs.SpD, true
	case "spe":
		return ivs.Spe, true
	default:
		return 0, false
	}
}
