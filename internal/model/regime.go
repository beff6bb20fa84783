package model

// MarketRegime is the discrete macro-economic state for a simulated year.
type MarketRegime string

const (
	RegimeDepression MarketRegime = "depression"
	RegimeRecession  MarketRegime = "recession"
	RegimeRecovery   MarketRegime = "recovery"
	RegimeNormal     MarketRegime = "normal"
	RegimeExpansion  MarketRegime = "expansion"
	RegimeBoom       MarketRegime = "boom"
)

// Regimes lists every regime in severity order.
func Regimes() []MarketRegime {
	return []MarketRegime{
		RegimeDepression, RegimeRecession, RegimeRecovery,
		RegimeNormal, RegimeExpansion, RegimeBoom,
	}
}
