// Package market owns the macro-economic regime for each simulated year.
// The regime is explicit state held by the Model and passed to callers;
// nothing here is process-global.
package market

import (
	"math/rand"

	"github.com/finsim-dev/finsim/internal/model"
)

// RegimeEffects is the fixed per-regime adjustment applied to interest
// rates at origination and to property appreciation each year.
type RegimeEffects struct {
	InterestEffect   float64
	AppreciationRate float64
}

// regimeEffects is the single table every rate/appreciation consumer uses.
var regimeEffects = map[model.MarketRegime]RegimeEffects{
	model.RegimeDepression: {InterestEffect: -0.020, AppreciationRate: -0.10},
	model.RegimeRecession:  {InterestEffect: -0.010, AppreciationRate: -0.05},
	model.RegimeRecovery:   {InterestEffect: -0.005, AppreciationRate: 0.02},
	model.RegimeNormal:     {InterestEffect: 0.0, AppreciationRate: 0.03},
	model.RegimeExpansion:  {InterestEffect: 0.005, AppreciationRate: 0.05},
	model.RegimeBoom:       {InterestEffect: 0.010, AppreciationRate: 0.08},
}

// regimeWeights drives yearly sampling. Normal years dominate; tail
// regimes stay rare.
var regimeWeights = []struct {
	regime model.MarketRegime
	weight int
}{
	{model.RegimeDepression, 5},
	{model.RegimeRecession, 15},
	{model.RegimeRecovery, 15},
	{model.RegimeNormal, 35},
	{model.RegimeExpansion, 20},
	{model.RegimeBoom, 10},
}

// Effects returns the fixed effect pair for a regime.
func Effects(r model.MarketRegime) RegimeEffects {
	e, ok := regimeEffects[r]
	if !ok {
		return regimeEffects[model.RegimeNormal]
	}
	return e
}

// Model samples and caches one regime per simulated year.
type Model struct {
	rng     *rand.Rand
	byYear  map[int]model.MarketRegime
	current model.MarketRegime
}

// New creates a Model drawing from rng. A nil rng gets a fixed seed so
// zero-config usage stays deterministic.
func New(rng *rand.Rand) *Model {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Model{
		rng:     rng,
		byYear:  make(map[int]model.MarketRegime),
		current: model.RegimeNormal,
	}
}

// RegimeForYear returns the cached regime for a year, sampling it on
// first request. Repeated calls for the same year always agree.
func (m *Model) RegimeForYear(year int) model.MarketRegime {
	if r, ok := m.byYear[year]; ok {
		return r
	}
	r := m.sample()
	m.byYear[year] = r
	m.current = r
	return r
}

// SetRegime pins a year's regime, overriding sampling. Used by scenario
// setups and snapshot restore.
func (m *Model) SetRegime(year int, r model.MarketRegime) {
	m.byYear[year] = r
	m.current = r
}

// Current returns the most recently resolved regime.
func (m *Model) Current() model.MarketRegime { return m.current }

// History returns the sampled regime per year, for persistence.
func (m *Model) History() map[int]model.MarketRegime {
	out := make(map[int]model.MarketRegime, len(m.byYear))
	for y, r := range m.byYear {
		out[y] = r
	}
	return out
}

func (m *Model) sample() model.MarketRegime {
	total := 0
	for _, w := range regimeWeights {
		total += w.weight
	}
	n := m.rng.Intn(total)
	for _, w := range regimeWeights {
		n -= w.weight
		if n < 0 {
			return w.regime
		}
	}
	return model.RegimeNormal
}
