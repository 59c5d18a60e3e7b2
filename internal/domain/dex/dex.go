// Package dex provides the read-only reference dataset: species metadata
// and experience growth tables. A Dex is populated once at startup and
// treated as immutable afterward, so lookups need no locking.
package dex

import (
	"strings"
)

// Species is one immutable reference entry.
type Species struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Types        []string       `json:"types"`
	BaseStats    map[string]int `json:"base_stats"`
	Abilities    []string       `json:"abilities"`
	GrowthRateID *int           `json:"growth_rate_id"`
}

// Dex indexes species by id and lowercase name, plus growth tables by
// growth-rate id. The zero value is a valid empty dex whose lookups all
// report unknown.
type Dex struct {
	byID   map[int]Species
	byName map[string]Species
	growth map[int][]int
}

// New returns an empty dex. Use Load to populate it before first use.
func New() *Dex {
	return &Dex{
		byID:   make(map[int]Species),
		byName: make(map[string]Species),
		growth: make(map[int][]int),
	}
}

// FromData builds a dex directly from in-memory datasets. Intended for
// embedding applications and tests that do not load from files.
func FromData(species []Species, growth map[int][]int) *Dex {
	d := New()
	for _, s := range species {
		d.byID[s.ID] = s
		d.byName[strings.ToLower(s.Name)] = s
	}
	for id, table := range growth {
		d.growth[id] = table
	}
	return d
}

// SpeciesByID looks up a species by its numeric id.
func (d *Dex) SpeciesByID(id int) (Species, bool) {
	s, ok := d.byID[id]
	return s, ok
}

// SpeciesByName looks up a species by name, case-insensitively.
func (d *Dex) SpeciesByName(name string) (Species, bool) {
	s, ok := d.byName[strings.ToLower(name)]
	return s, ok
}

// LevelForExp derives a level from cumulative experience using the growth
// table of the given species. The result is the greatest level whose
// threshold is at or below exp, floored at level 1. It reports false when
// the species or its growth table is unknown.
//
// Table layout: thresholds are indexed by level starting at 1; index 0 is
// a placeholder. Thresholds are monotonically non-decreasing.
func (d *Dex) LevelForExp(exp, speciesID int) (int, bool) {
	s, ok := d.byID[speciesID]
	if !ok || s.GrowthRateID == nil {
		return 0, false
	}
	table, ok := d.growth[*s.GrowthRateID]
	if !ok {
		return 0, false
	}

	best := 1
	for level := 1; level < len(table); level++ {
		if exp >= table[level] {
			best = level
		} else {
			break
		}
	}
	return best, true
}

// SpeciesCount returns the number of loaded species entries.
func (d *Dex) SpeciesCount() int {
	return len(d.byID)
}

// GrowthTableCount returns the number of loaded growth tables.
func (d *Dex) GrowthTableCount() int {
	return len(d.growth)
}
