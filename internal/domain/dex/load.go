package dex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pattarpon/pokescan/pkg/logger"
	"github.com/pattarpon/pokescan/pkg/metrics"
)

// Load reads the two reference JSON documents: a species list and a
// mapping from growth-rate id to threshold table. Each document failing
// to load leaves its lookup empty and logs the reason; the dex stays
// usable with degraded accuracy. Load must complete before the dex is
// shared; it is not safe to call concurrently with lookups.
func Load(ctx context.Context, speciesPath, growthPath string) *Dex {
	log := logger.Named("dex")
	d := New()

	if err := d.loadSpecies(speciesPath); err != nil {
		log.Warn(ctx, "species dataset unavailable, lookups will report unknown",
			logger.String("path", speciesPath),
			logger.Error(err),
		)
	} else {
		log.Info(ctx, "species dataset loaded",
			logger.String("path", speciesPath),
			logger.Int("species", d.SpeciesCount()),
		)
	}

	if err := d.loadGrowthTables(growthPath); err != nil {
		log.Warn(ctx, "growth tables unavailable, level derivation disabled",
			logger.String("path", growthPath),
			logger.Error(err),
		)
	} else {
		log.Info(ctx, "growth tables loaded",
			logger.String("path", growthPath),
			logger.Int("tables", d.GrowthTableCount()),
		)
	}

	metrics.UpdateDexSpeciesCount(d.SpeciesCount())
	metrics.UpdateDexGrowthTableCount(d.GrowthTableCount())
	return d
}

func (d *Dex) loadSpecies(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}

	var list []Species
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedDataset, err)
	}

	for _, s := range list {
		d.byID[s.ID] = s
		d.byName[strings.ToLower(s.Name)] = s
	}
	return nil
}

func (d *Dex) loadGrowthTables(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}

	// JSON object keys are strings; growth-rate ids are numeric.
	var raw map[string][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedDataset, err)
	}

	for key, table := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("%w: growth-rate id %q is not numeric", ErrMalformedDataset, key)
		}
		d.growth[id] = table
	}
	return nil
}
