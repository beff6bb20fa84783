package model

import "github.com/shopspring/decimal"

// PropertyType classifies real-estate investments.
type PropertyType string

const (
	PropertySingleFamily PropertyType = "single-family"
	PropertyCondo        PropertyType = "condo"
	PropertyTownhouse    PropertyType = "townhouse"
	PropertyMultiFamily  PropertyType = "multi-family"
	PropertyCommercial   PropertyType = "commercial"
)

// PropertyTraits carries the per-type rent ceiling and cost-rate defaults.
// RentCapRate is the maximum monthly rent as a fraction of current value;
// the absolute ceiling in AbsoluteRentCap applies on top of it.
type PropertyTraits struct {
	RentCapRate     float64
	TaxRate         float64
	InsuranceRate   float64
	MaintenanceRate float64
}

var propertyTraits = map[PropertyType]PropertyTraits{
	PropertySingleFamily: {RentCapRate: 0.008, TaxRate: 0.011, InsuranceRate: 0.005, MaintenanceRate: 0.01},
	PropertyCondo:        {RentCapRate: 0.010, TaxRate: 0.010, InsuranceRate: 0.004, MaintenanceRate: 0.008},
	PropertyTownhouse:    {RentCapRate: 0.009, TaxRate: 0.011, InsuranceRate: 0.005, MaintenanceRate: 0.009},
	PropertyMultiFamily:  {RentCapRate: 0.007, TaxRate: 0.012, InsuranceRate: 0.006, MaintenanceRate: 0.012},
	PropertyCommercial:   {RentCapRate: 0.005, TaxRate: 0.015, InsuranceRate: 0.008, MaintenanceRate: 0.015},
}

// AbsoluteRentCap is the hard monthly rent ceiling regardless of value.
var AbsoluteRentCap = decimal.NewFromInt(10000)

// TraitsForProperty returns the table entry for a property type.
func TraitsForProperty(t PropertyType) PropertyTraits {
	tr, ok := propertyTraits[t]
	if !ok {
		return propertyTraits[PropertySingleFamily]
	}
	return tr
}

// PropertyInvestment is an owned property, optionally rented and
// optionally mortgaged.
type PropertyInvestment struct {
	ID                int
	CollateralID      int
	Type              PropertyType
	Location          string
	PurchasePrice     decimal.Decimal
	PurchaseYear      int
	CurrentValue      decimal.Decimal
	IsRental          bool
	MonthlyRent       decimal.Decimal
	OccupancyRate     float64
	MortgageID        int // 0 = owned outright
	MortgageTerm      int
	MortgageYearsLeft int
	TaxRate           float64
	InsuranceRate     float64
	MaintenanceRate   float64
	ManagementFeeRate float64
}

// Equity is current value minus outstanding mortgage debt. mortgageDebt is
// the magnitude of the linked mortgage balance, zero when unmortgaged.
func (p *PropertyInvestment) Equity(mortgageDebt decimal.Decimal) decimal.Decimal {
	return p.CurrentValue.Sub(mortgageDebt)
}

// MaxMonthlyRent is the anti-exploit rent ceiling at the property's
// current value: a type-specific share of value, never above the
// absolute cap.
func (p *PropertyInvestment) MaxMonthlyRent() decimal.Decimal {
	cap := p.CurrentValue.Mul(decimal.NewFromFloat(TraitsForProperty(p.Type).RentCapRate)).Round(2)
	if cap.GreaterThan(AbsoluteRentCap) {
		return AbsoluteRentCap
	}
	return cap
}

// CappedMonthlyRent is the rent actually charged: the stored rent, capped
// on every read so later value swings cannot launder an oversized rent.
func (p *PropertyInvestment) CappedMonthlyRent() decimal.Decimal {
	max := p.MaxMonthlyRent()
	if p.MonthlyRent.GreaterThan(max) {
		return max
	}
	return p.MonthlyRent
}
