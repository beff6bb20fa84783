package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// CollateralType classifies pledgeable assets.
type CollateralType string

const (
	CollateralRealEstate  CollateralType = "real-estate"
	CollateralVehicle     CollateralType = "vehicle"
	CollateralInvestment  CollateralType = "investment"
	CollateralSavings     CollateralType = "savings"
	CollateralJewelry     CollateralType = "jewelry"
	CollateralElectronics CollateralType = "electronics"
	CollateralOther       CollateralType = "other"
)

// CollateralTraits holds per-type depreciation and lending limits.
// DepreciationRate is the annual value decay; negative means the class
// appreciates instead.
type CollateralTraits struct {
	DepreciationRate float64
	MaxLTV           float64
}

var collateralTraits = map[CollateralType]CollateralTraits{
	CollateralRealEstate:  {DepreciationRate: -0.03, MaxLTV: 0.80},
	CollateralVehicle:     {DepreciationRate: 0.15, MaxLTV: 0.90},
	CollateralInvestment:  {DepreciationRate: -0.05, MaxLTV: 0.50},
	CollateralSavings:     {DepreciationRate: 0.0, MaxLTV: 0.95},
	CollateralJewelry:     {DepreciationRate: -0.01, MaxLTV: 0.40},
	CollateralElectronics: {DepreciationRate: 0.25, MaxLTV: 0.30},
	CollateralOther:       {DepreciationRate: 0.10, MaxLTV: 0.50},
}

// TraitsForCollateral returns the depreciation/LTV table entry for a type.
func TraitsForCollateral(t CollateralType) CollateralTraits {
	tr, ok := collateralTraits[t]
	if !ok {
		return collateralTraits[CollateralOther]
	}
	return tr
}

// CollateralAsset is an asset pledgeable against a loan.
type CollateralAsset struct {
	ID           int
	Type         CollateralType
	BaseValue    decimal.Decimal
	PurchaseYear int
	LoanID       int // 0 = unpledged
	Repossessed  bool
}

// CurrentValue applies the type's compound depreciation (or appreciation,
// for negative rates) over the asset's age.
func (c *CollateralAsset) CurrentValue(year int) decimal.Decimal {
	age := year - c.PurchaseYear
	if age <= 0 {
		return c.BaseValue
	}
	factor := math.Pow(1-TraitsForCollateral(c.Type).DepreciationRate, float64(age))
	v := c.BaseValue.Mul(decimal.NewFromFloat(factor)).Round(2)
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// IsAvailable reports whether the asset can be pledged: not already
// securing a loan and not repossessed.
func (c *CollateralAsset) IsAvailable() bool {
	return c.LoanID == 0 && !c.Repossessed
}

// MaxLoan returns the largest loan the asset can secure at its current
// value under the type's LTV limit.
func (c *CollateralAsset) MaxLoan(year int) decimal.Decimal {
	return c.CurrentValue(year).Mul(decimal.NewFromFloat(TraitsForCollateral(c.Type).MaxLTV)).Round(2)
}
