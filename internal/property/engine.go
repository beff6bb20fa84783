// Package property owns property-investment records and composes the
// ledger, collateral registry, amortization math, tax engine and credit
// model into purchase, sale, rental and refinance operations.
package property

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finsim-dev/finsim/internal/amort"
	"github.com/finsim-dev/finsim/internal/collateral"
	"github.com/finsim-dev/finsim/internal/credit"
	"github.com/finsim-dev/finsim/internal/ledger"
	"github.com/finsim-dev/finsim/internal/model"
	"github.com/finsim-dev/finsim/internal/tax"
)

// Minimum down payments and refinance loan-to-value ceilings. Rentals
// carry stricter terms and a rate premium.
const (
	minDownRental     = 0.20
	minDownPrimary    = 0.05
	maxLTVRental      = 0.75
	maxLTVPrimary     = 0.80
	rentalRatePremium = 0.005

	defaultOccupancy     = 0.90
	defaultManagementFee = 0.08

	refinanceScorePenalty = -5
)

// Engine owns the property arena and its collaborators.
type Engine struct {
	ledger   *ledger.Ledger
	registry *collateral.Registry
	taxes    *tax.Engine
	credit   *credit.Model
	cash     ledger.CashHolder

	properties map[int]*model.PropertyInvestment
	order      []int
	nextID     int
}

// NewEngine wires the engine to its collaborators.
func NewEngine(l *ledger.Ledger, r *collateral.Registry, t *tax.Engine, c *credit.Model, cash ledger.CashHolder) *Engine {
	return &Engine{
		ledger:     l,
		registry:   r,
		taxes:      t,
		credit:     c,
		cash:       cash,
		properties: make(map[int]*model.PropertyInvestment),
		nextID:     1,
	}
}

// CreateParams holds parameters for a property purchase.
type CreateParams struct {
	Value       decimal.Decimal
	DownPayment decimal.Decimal
	IsRental    bool
	MonthlyRent decimal.Decimal
	TermYears   int
	Year        int
	Type        model.PropertyType
	Location    string
	RateAdjust  float64 // regime interest effect + credit modifier
}

// Create buys a property. The minimum down payment is 20% of value for
// rentals, 5% for primary residences. When the down payment does not
// cover the full price, a mortgage is opened for the remainder with a
// rental rate premium where applicable. All validation happens before
// any mutation, and cash is debited only after the collateral, mortgage
// and property records are all linked; a partial failure rolls back and
// consumes nothing.
func (e *Engine) Create(p CreateParams) (*model.PropertyInvestment, *model.Account, error) {
	value := p.Value.Round(2)
	down := p.DownPayment.Round(2)
	if !value.IsPositive() || !down.IsPositive() {
		return nil, nil, model.ErrInvalidAmount
	}
	minPct := minDownPrimary
	if p.IsRental {
		minPct = minDownRental
	}
	minDown := value.Mul(decimal.NewFromFloat(minPct)).Round(2)
	if down.LessThan(minDown) {
		return nil, nil, fmt.Errorf("down payment %s below minimum %s: %w", down, minDown, model.ErrDownPaymentTooLow)
	}
	if down.GreaterThan(value) {
		down = value
	}
	if e.cash.Cash().LessThan(down) {
		return nil, nil, fmt.Errorf("down payment %s: %w", down, model.ErrInsufficientFunds)
	}

	asset, err := e.registry.Register(model.CollateralRealEstate, value, p.Year)
	if err != nil {
		return nil, nil, err
	}

	term := p.TermYears
	if term <= 0 {
		term = model.Traits(model.AccountMortgage).DefaultTerm
	}

	var mortgage *model.Account
	financed := value.Sub(down)
	if financed.IsPositive() {
		adjust := p.RateAdjust
		if p.IsRental {
			adjust += rentalRatePremium
		}
		mortgage, err = e.ledger.OpenAccount(ledger.OpenParams{
			Type:          model.AccountMortgage,
			InitialAmount: financed,
			TermYears:     term,
			CollateralID:  asset.ID,
			Year:          p.Year,
			RateAdjust:    adjust,
		})
		if err != nil {
			_ = e.registry.Remove(asset.ID)
			return nil, nil, err
		}
		if err := e.registry.Pledge(asset.ID, mortgage.ID); err != nil {
			_, _ = e.ledger.SettleDebt(mortgage.ID, p.Year, "Mortgage voided at failed purchase")
			_ = e.registry.Remove(asset.ID)
			return nil, nil, err
		}
	}

	traits := model.TraitsForProperty(p.Type)
	prop := &model.PropertyInvestment{
		ID:              e.nextID,
		CollateralID:    asset.ID,
		Type:            p.Type,
		Location:        p.Location,
		PurchasePrice:   value,
		PurchaseYear:    p.Year,
		CurrentValue:    value,
		IsRental:        p.IsRental,
		TaxRate:         traits.TaxRate,
		InsuranceRate:   traits.InsuranceRate,
		MaintenanceRate: traits.MaintenanceRate,
	}
	if p.IsRental {
		prop.MonthlyRent = p.MonthlyRent.Round(2)
		prop.OccupancyRate = defaultOccupancy
		prop.ManagementFeeRate = defaultManagementFee
	}
	if mortgage != nil {
		prop.MortgageID = mortgage.ID
		prop.MortgageTerm = term
		prop.MortgageYearsLeft = term
		mortgage.PropertyID = prop.ID
	}

	// Every linked record exists; the purchase can no longer fail.
	e.properties[prop.ID] = prop
	e.order = append(e.order, prop.ID)
	e.nextID++
	e.cash.SetCash(e.cash.Cash().Sub(down))
	e.ledger.RecordCash(model.TxnPurchase, down,
		fmt.Sprintf("Down payment on %s in %s", prop.Type, prop.Location), p.Year)
	return prop, mortgage, nil
}

// SaleResult reports the outcome of a completed sale.
type SaleResult struct {
	NetProceeds     decimal.Decimal
	MortgagePayoff  decimal.Decimal
	CapitalGainsTax decimal.Decimal
	Message         string
}

// Sell disposes of a property at the given price. The price must cover
// the outstanding mortgage; proceeds are price minus payoff minus
// capital-gains tax. The mortgage closes, the property and its
// collateral record are removed, and Sale plus Tax transactions are
// appended.
func (e *Engine) Sell(propertyID int, price decimal.Decimal, year int) (*SaleResult, error) {
	prop, err := e.Property(propertyID)
	if err != nil {
		return nil, err
	}
	price = price.Round(2)
	if !price.IsPositive() {
		return nil, model.ErrInvalidAmount
	}

	payoff := decimal.Zero
	if prop.MortgageID != 0 {
		mortgage, err := e.ledger.Account(prop.MortgageID)
		if err != nil {
			return nil, err
		}
		payoff = mortgage.Debt()
		if price.LessThan(payoff) {
			return nil, fmt.Errorf("price %s below mortgage balance %s: %w", price, payoff, model.ErrPriceBelowMortgage)
		}
	}

	gainsTax := e.taxes.CapitalGainsOnSale(prop.PurchasePrice, price, year-prop.PurchaseYear)
	proceeds := price.Sub(payoff).Sub(gainsTax)

	if prop.MortgageID != 0 {
		if _, err := e.ledger.SettleDebt(prop.MortgageID, year, "Mortgage payoff at sale"); err != nil {
			return nil, err
		}
	}
	if err := e.registry.Remove(prop.CollateralID); err != nil {
		return nil, err
	}
	delete(e.properties, propertyID)
	for i, id := range e.order {
		if id == propertyID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}

	e.cash.SetCash(e.cash.Cash().Add(proceeds))
	e.ledger.RecordCash(model.TxnSale, price,
		fmt.Sprintf("Sold %s in %s", prop.Type, prop.Location), year)
	if gainsTax.IsPositive() {
		e.ledger.RecordCash(model.TxnTax, gainsTax, "Capital gains tax", year)
		e.taxes.Record(year, gainsTax, model.TaxCapitalGains, nil)
	}

	msg := fmt.Sprintf("sold for %s, netting %s after payoff and taxes", price, proceeds)
	return &SaleResult{
		NetProceeds:     proceeds,
		MortgagePayoff:  payoff,
		CapitalGainsTax: gainsTax,
		Message:         msg,
	}, nil
}

// AnnualRentalIncome is capped rent times twelve, scaled by occupancy.
// The rent cap applies on every read.
func (e *Engine) AnnualRentalIncome(prop *model.PropertyInvestment) decimal.Decimal {
	if !prop.IsRental {
		return decimal.Zero
	}
	gross := prop.CappedMonthlyRent().Mul(decimal.NewFromInt(12))
	return gross.Mul(decimal.NewFromFloat(prop.OccupancyRate)).Round(2)
}

// AnnualExpenses sums carrying costs: value-based tax, maintenance and
// insurance, plus a management fee on gross rental income.
func (e *Engine) AnnualExpenses(prop *model.PropertyInvestment) decimal.Decimal {
	rates := prop.TaxRate + prop.MaintenanceRate + prop.InsuranceRate
	expenses := prop.CurrentValue.Mul(decimal.NewFromFloat(rates))
	if prop.IsRental && prop.ManagementFeeRate > 0 {
		gross := e.AnnualRentalIncome(prop)
		expenses = expenses.Add(gross.Mul(decimal.NewFromFloat(prop.ManagementFeeRate)))
	}
	return expenses.Round(2)
}

// AnnualOperatingExpenses is AnnualExpenses without the property-tax
// component. The yearly tick charges operating costs here and leaves
// property tax to the tax step, so it is never charged twice.
func (e *Engine) AnnualOperatingExpenses(prop *model.PropertyInvestment) decimal.Decimal {
	taxPart := prop.CurrentValue.Mul(decimal.NewFromFloat(prop.TaxRate)).Round(2)
	return e.AnnualExpenses(prop).Sub(taxPart)
}

// AnnualMortgagePayment delegates to the amortization engine using the
// linked mortgage's current balance, rate and remaining term. Zero when
// unmortgaged or the term has run out.
func (e *Engine) AnnualMortgagePayment(propertyID, year int) (decimal.Decimal, error) {
	prop, err := e.Property(propertyID)
	if err != nil {
		return decimal.Zero, err
	}
	if prop.MortgageID == 0 {
		return decimal.Zero, nil
	}
	mortgage, err := e.ledger.Account(prop.MortgageID)
	if err != nil {
		return decimal.Zero, err
	}
	if !mortgage.Active {
		return decimal.Zero, nil
	}
	termLeft := amort.RemainingTerm(mortgage.TermYears, mortgage.CreationYear, year)
	if termLeft == 0 {
		return decimal.Zero, nil
	}
	monthly := amort.MonthlyPayment(mortgage.Debt(), mortgage.InterestRate/12, termLeft*12)
	return monthly.Mul(decimal.NewFromInt(12)).Round(2), nil
}

// NetCashFlow is rent minus expenses minus the year's mortgage payment.
func (e *Engine) NetCashFlow(propertyID, year int) (decimal.Decimal, error) {
	prop, err := e.Property(propertyID)
	if err != nil {
		return decimal.Zero, err
	}
	payment, err := e.AnnualMortgagePayment(propertyID, year)
	if err != nil {
		return decimal.Zero, err
	}
	return e.AnnualRentalIncome(prop).Sub(e.AnnualExpenses(prop)).Sub(payment), nil
}

// Refinance replaces the property's mortgage with a new one over newTerm
// years, optionally pulling cash out of equity up to the loan-to-value
// ceiling (75% rentals, 80% primary). Underwater properties cannot
// refinance, eligibility gates apply, and a completed refinance costs a
// small fixed credit-score penalty.
func (e *Engine) Refinance(propertyID, newTerm int, cashOut decimal.Decimal, year int, employment []model.EmploymentRecord) (*model.Account, error) {
	prop, err := e.Property(propertyID)
	if err != nil {
		return nil, err
	}
	if prop.MortgageID == 0 {
		return nil, &model.NotEligibleError{Reason: "property has no mortgage to refinance"}
	}
	if newTerm <= 0 {
		return nil, model.ErrInvalidAmount
	}
	cashOut = cashOut.Round(2)
	if cashOut.IsNegative() {
		return nil, model.ErrInvalidAmount
	}
	mortgage, err := e.ledger.Account(prop.MortgageID)
	if err != nil {
		return nil, err
	}
	oldDebt := mortgage.Debt()
	if prop.Equity(oldDebt).IsNegative() {
		return nil, &model.NotEligibleError{Reason: "mortgage is underwater"}
	}

	ltv := maxLTVPrimary
	if prop.IsRental {
		ltv = maxLTVRental
	}
	maxCashOut := prop.CurrentValue.Mul(decimal.NewFromFloat(ltv)).Round(2).Sub(oldDebt)
	if maxCashOut.IsNegative() {
		maxCashOut = decimal.Zero
	}
	if cashOut.GreaterThan(maxCashOut) {
		return nil, fmt.Errorf("cash-out %s above maximum %s: %w", cashOut, maxCashOut, model.ErrCashOutExceedsMax)
	}

	newPrincipal := oldDebt.Add(cashOut)
	newMonthly := amort.MonthlyPayment(newPrincipal, mortgage.InterestRate/12, newTerm*12)
	// The old mortgage is being replaced, so it does not count toward
	// debt service in the eligibility check.
	var others []*model.Account
	for _, a := range e.ledger.ActiveAccounts() {
		if a.ID != prop.MortgageID {
			others = append(others, a)
		}
	}
	if err := credit.CheckEligibility(model.AccountMortgage, others, employment, newMonthly, year); err != nil {
		return nil, err
	}

	if _, err := e.ledger.SettleDebt(prop.MortgageID, year, "Mortgage closed by refinance"); err != nil {
		return nil, err
	}
	if err := e.registry.Release(prop.CollateralID); err != nil {
		return nil, err
	}
	adjust := e.credit.RateModifier()
	if prop.IsRental {
		adjust += rentalRatePremium
	}
	newMortgage, err := e.ledger.OpenAccount(ledger.OpenParams{
		Type:          model.AccountMortgage,
		InitialAmount: newPrincipal,
		TermYears:     newTerm,
		CollateralID:  prop.CollateralID,
		Year:          year,
		RateAdjust:    adjust,
	})
	if err != nil {
		return nil, err
	}
	if err := e.registry.Pledge(prop.CollateralID, newMortgage.ID); err != nil {
		return nil, err
	}
	newMortgage.PropertyID = prop.ID
	prop.MortgageID = newMortgage.ID
	prop.MortgageTerm = newTerm
	prop.MortgageYearsLeft = newTerm

	if cashOut.IsPositive() {
		e.cash.SetCash(e.cash.Cash().Add(cashOut))
		e.ledger.RecordCash(model.TxnLoan, cashOut, "Cash-out refinance", year)
	}
	e.credit.Adjust(refinanceScorePenalty, year, "refinance")
	return newMortgage, nil
}

// ConvertToRental flips a primary residence into a rental. The requested
// rent is stored as-is; the cap applies on every read.
func (e *Engine) ConvertToRental(propertyID int, monthlyRent decimal.Decimal, year int) error {
	prop, err := e.Property(propertyID)
	if err != nil {
		return err
	}
	if !monthlyRent.IsPositive() {
		return model.ErrInvalidAmount
	}
	prop.IsRental = true
	prop.MonthlyRent = monthlyRent.Round(2)
	if prop.OccupancyRate == 0 {
		prop.OccupancyRate = defaultOccupancy
	}
	if prop.ManagementFeeRate == 0 {
		prop.ManagementFeeRate = defaultManagementFee
	}
	return nil
}

// UpdateValue applies a year's appreciation rate to a property and keeps
// the collateral record in step. Returns the value delta.
func (e *Engine) UpdateValue(propertyID int, appreciationRate float64, year int) (decimal.Decimal, error) {
	prop, err := e.Property(propertyID)
	if err != nil {
		return decimal.Zero, err
	}
	oldValue := prop.CurrentValue
	newValue := oldValue.Mul(decimal.NewFromFloat(1 + appreciationRate)).Round(2)
	if newValue.IsNegative() {
		newValue = decimal.Zero
	}
	prop.CurrentValue = newValue
	if asset, err := e.registry.Asset(prop.CollateralID); err == nil {
		asset.BaseValue = newValue
		asset.PurchaseYear = year
	}
	if prop.MortgageID != 0 {
		if mortgage, err := e.ledger.Account(prop.MortgageID); err == nil {
			prop.MortgageYearsLeft = amort.RemainingTerm(mortgage.TermYears, mortgage.CreationYear, year)
		}
	}
	return newValue.Sub(oldValue), nil
}

// UnderwaterWarning reports the defined consequences of negative equity.
// Being underwater is a state, not an error: it blocks refinancing and
// carries credit and tax-forgiveness implications the caller must
// surface.
func (e *Engine) UnderwaterWarning(propertyID int) (string, bool) {
	prop, err := e.Property(propertyID)
	if err != nil {
		return "", false
	}
	debt := decimal.Zero
	if prop.MortgageID != 0 {
		if mortgage, err := e.ledger.Account(prop.MortgageID); err == nil {
			debt = mortgage.Debt()
		}
	}
	equity := prop.Equity(debt)
	if !equity.IsNegative() {
		return "", false
	}
	return fmt.Sprintf(
		"property %d is underwater by %s: refinancing is blocked; walking away damages credit, and forgiven debt may be taxable",
		propertyID, equity.Neg()), true
}

// Property looks up a property by handle.
func (e *Engine) Property(propertyID int) (*model.PropertyInvestment, error) {
	prop, ok := e.properties[propertyID]
	if !ok {
		return nil, &model.NotFoundError{Kind: "property", ID: propertyID}
	}
	return prop, nil
}

// Properties returns every property in purchase order.
func (e *Engine) Properties() []*model.PropertyInvestment {
	out := make([]*model.PropertyInvestment, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.properties[id])
	}
	return out
}

// TotalEquity sums equity across all properties.
func (e *Engine) TotalEquity() decimal.Decimal {
	total := decimal.Zero
	for _, id := range e.order {
		prop := e.properties[id]
		debt := decimal.Zero
		if prop.MortgageID != 0 {
			if mortgage, err := e.ledger.Account(prop.MortgageID); err == nil && mortgage.Active {
				debt = mortgage.Debt()
			}
		}
		total = total.Add(prop.Equity(debt))
	}
	return total
}

// Restore rebuilds the property arena from persisted records.
func (e *Engine) Restore(properties []*model.PropertyInvestment, nextID int) {
	e.properties = make(map[int]*model.PropertyInvestment, len(properties))
	e.order = e.order[:0]
	for _, p := range properties {
		e.properties[p.ID] = p
		e.order = append(e.order, p.ID)
	}
	e.nextID = nextID
}

// NextID exposes the arena cursor for persistence.
func (e *Engine) NextID() int { return e.nextID }
