package cmd

import (
	"fmt"

	"github.com/btaeng/trivia-map/internal/geo"
	"github.com/btaeng/trivia-map/internal/logger"
	"github.com/btaeng/trivia-map/internal/oracle"
	"github.com/btaeng/trivia-map/internal/store"
	"github.com/btaeng/trivia-map/internal/trivia"
)

func loadDataset() (*geo.Dataset, error) {
	if cfg.Data.Boundaries == "" {
		logger.L().Info("boundaries_embedded_sample", "hint", "set data.boundaries to a Natural Earth admin-0 GeoJSON for full coverage")
		return geo.LoadEmbedded()
	}
	ds, err := geo.LoadFile(cfg.Data.Boundaries)
	if err != nil {
		return nil, fmt.Errorf("loading boundaries from %s: %w", cfg.Data.Boundaries, err)
	}
	return ds, nil
}

// newOracle builds the configured provider with timeout and latency metrics.
func newOracle() (oracle.Oracle, error) {
	o, err := oracle.New(cfg.Oracle.Provider, cfg.Oracle.APIKey())
	if err != nil {
		return nil, err
	}
	return oracle.Instrument(cfg.Oracle.Provider, oracle.WithTimeout(o, cfg.Oracle.Timeout)), nil
}

// newExclusions returns the configured exclusion store and its closer.
func newExclusions() (trivia.ExclusionStore, func() error, error) {
	switch cfg.Cache.Backend {
	case "duckdb":
		s, err := store.New()
		if err != nil {
			return nil, nil, fmt.Errorf("opening exclusion store: %w", err)
		}
		return s, s.Close, nil
	default:
		return trivia.NewMemoryExclusions(), func() error { return nil }, nil
	}
}

// newRelay wires the oracle and exclusion store together. The returned
// closer releases the store.
func newRelay(wrap func(oracle.Oracle) oracle.Oracle) (*trivia.Relay, trivia.ExclusionStore, func() error, error) {
	o, err := newOracle()
	if err != nil {
		return nil, nil, nil, err
	}
	if wrap != nil {
		o = wrap(o)
	}
	ex, closeFn, err := newExclusions()
	if err != nil {
		return nil, nil, nil, err
	}
	return trivia.NewRelay(o, cfg.Oracle.Model, ex, logger.L()), ex, closeFn, nil
}
