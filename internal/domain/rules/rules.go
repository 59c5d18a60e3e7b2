// Package rules evaluates canonical records against user-authored catch
// criteria. Evaluation is a pure function of the record and a criteria
// snapshot; it is safe to call from any goroutine.
package rules

import (
	"strings"
)

// maxIVTotal is the IV ceiling: six stats at 31 each.
const maxIVTotal = 186

// Profile is one named rule set. Nil/empty filters are not applied.
type Profile struct {
	Name            *string        `json:"name,omitempty"`
	Species         []string       `json:"species,omitempty"`
	RequiredNatures []string       `json:"requiredNatures,omitempty"`
	MinIVs          map[string]int `json:"minIVs,omitempty"`
	MinIVTotal      *int           `json:"minIVTotal,omitempty"`
	MinIVPercent    *int           `json:"minIVPercent,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
}

// Criteria is the full user-configurable rule state.
type Criteria struct {
	ActiveProfile     string             `json:"activeProfile"`
	AlwaysAlertShiny  bool               `json:"alwaysAlertShiny"`
	AlertSoundEnabled bool               `json:"alertSoundEnabled"`
	Profiles          map[string]Profile `json:"profiles"`
}

// VerdictKind tags the outcome of an evaluation.
type VerdictKind int

const (
	// VerdictSkip means the record fails the active profile.
	VerdictSkip VerdictKind = iota
	// VerdictCatch means the record meets every declared criterion.
	VerdictCatch
	// VerdictShiny is the unconditional shiny alert.
	VerdictShiny
)

// String returns the metric/log label for the kind.
func (k VerdictKind) String() string {
	switch k {
	case VerdictCatch:
		return "catch"
	case VerdictShiny:
		return "shiny"
	default:
		return "skip"
	}
}

// Verdict is the result of evaluating one record.
type Verdict struct {
	Kind   VerdictKind
	Reason string
}

// Shiny returns the unconditional shiny verdict.
func Shiny() Verdict { return Verdict{Kind: VerdictShiny} }

// CatchIt returns a catch verdict with the given reason.
func CatchIt(reason string) Verdict { return Verdict{Kind: VerdictCatch, Reason: reason} }

// Skip returns a skip verdict with the given reason.
func Skip(reason string) Verdict { return Verdict{Kind: VerdictSkip, Reason: reason} }

// containsFold reports whether list contains s, case-insensitively.
func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// DefaultCriteria returns the hardcoded fallback used when neither a
// persisted nor a bundled criteria document is available.
func DefaultCriteria() Criteria {
	name := "High IVs"
	minPercent := 80
	notes := "Catch any Pokemon with 80%+ IVs"
	return Criteria{
		ActiveProfile:     "high_ivs",
		AlwaysAlertShiny:  true,
		AlertSoundEnabled: true,
		Profiles: map[string]Profile{
			"high_ivs": {
				Name:         &name,
				MinIVPercent: &minPercent,
				Notes:        &notes,
			},
		},
	}
}

// ivPercent truncates the percentage of the IV ceiling met by sum.
func ivPercent(sum int) int {
	return int(float64(sum) / float64(maxIVTotal) * 100)
}
