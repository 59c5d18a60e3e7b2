package emufeed

import (
	"crypto/rand"
	"encoding/json"
	"math/big"

	"github.com/pattarpon/pokescan/internal/domain/model"
)

// Encounter value ranges.
const (
	maxIV        = 32 // exclusive bound, IVs run 0-31
	minLevel     = 2
	levelRange   = 43
	natureCount  = 25
	abilitySlots = 2
	pidBound     = 1 << 32
)

// natures is the fixed nature table indexed by PID modulo 25.
var natures = []string{
	"Hardy", "Lonely", "Brave", "Adamant", "Naughty",
	"Bold", "Docile", "Relaxed", "Impish", "Lax",
	"Timid", "Hasty", "Serious", "Jolly", "Naive",
	"Modest", "Mild", "Quiet", "Bashful", "Rash",
	"Calm", "Gentle", "Sassy", "Careful", "Quirky",
}

// speciesPool holds wild encounter species ids to draw from.
var speciesPool = []int{
	25, 261, 263, 273, 280, 283, 290, 296, 300,
	304, 309, 318, 325, 333, 339, 349, 359, 363,
}

// randomInt returns a uniform random integer in [0, bound).
func randomInt(bound int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(bound))
	return n.Int64()
}

// generateEncounter builds one synthetic wild-encounter payload. The
// nature and ability slot derive from the PID the way the Gen III games
// compute them.
func generateEncounter(shinyOdds int) model.RawPayload {
	pid := uint32(randomInt(pidBound))
	speciesID := speciesPool[randomInt(int64(len(speciesPool)))]
	level := int(minLevel + randomInt(levelRange))
	nature := natures[pid%natureCount]
	slot := int(pid % abilitySlots)
	game := "emerald_us_eu"

	gender := "male"
	if randomInt(2) == 0 {
		gender = "female"
	}

	shiny := false
	if shinyOdds > 0 && randomInt(int64(shinyOdds)) == 0 {
		shiny = true
	}

	payload := model.RawPayload{
		Game:        &game,
		PID:         &pid,
		SpeciesID:   &speciesID,
		Level:       &level,
		Nature:      &nature,
		AbilitySlot: &slot,
		Gender:      &gender,
		Shiny:       &shiny,
		IVs: &model.IVs{
			HP:  int(randomInt(maxIV)),
			Atk: int(randomInt(maxIV)),
			Def: int(randomInt(maxIV)),
			SpA: int(randomInt(maxIV)),
			SpD: int(randomInt(maxIV)),
			Spe: int(randomInt(maxIV)),
		},
	}

	if shiny {
		shinyType := "star"
		if randomInt(16) == 0 {
			shinyType = "square"
		}
		payload.ShinyType = &shinyType
	}

	return payload
}

// encounterLine renders one encounter as a newline-terminated JSON line.
func encounterLine(shinyOdds int) []byte {
	payload := generateEncounter(shinyOdds)
	data, _ := json.Marshal(payload)
	return append(data, '\n')
}

// clearLine is the sentinel resetting the scanner display.
func clearLine() []byte {
	return []byte("{\"clear\":true}\n")
}

// malformedLine is a deliberately broken frame for resilience testing.
func malformedLine() []byte {
	return []byte("{\"species_id\":25,\"level\":\n")
}
