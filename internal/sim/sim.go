// Package sim is the financial simulation core's front door. It owns
// every component, holds the caller's cash, and exposes the yearly tick
// plus the synchronous operations the game loop calls between ticks.
package sim

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/finsim-dev/finsim/internal/amort"
	"github.com/finsim-dev/finsim/internal/collateral"
	"github.com/finsim-dev/finsim/internal/config"
	"github.com/finsim-dev/finsim/internal/credit"
	"github.com/finsim-dev/finsim/internal/ledger"
	"github.com/finsim-dev/finsim/internal/market"
	"github.com/finsim-dev/finsim/internal/metrics"
	"github.com/finsim-dev/finsim/internal/model"
	"github.com/finsim-dev/finsim/internal/property"
	"github.com/finsim-dev/finsim/internal/tax"
)

// missedPaymentPenalty is the credit-score hit for a mortgage payment
// the caller's cash could not cover.
const missedPaymentPenalty = -15

// Simulation composes the financial core. All mutation flows through
// its methods; the game loop never touches component state directly.
type Simulation struct {
	logger    *slog.Logger
	rng       *rand.Rand
	collector *metrics.Collector

	market     *market.Model
	ledger     *ledger.Ledger
	registry   *collateral.Registry
	taxes      *tax.Engine
	credit     *credit.Model
	properties *property.Engine

	cash        decimal.Decimal
	employment  []model.EmploymentRecord
	birthYear   int
	currentYear int
}

// New builds a simulation from config. A nil config uses defaults; a nil
// logger discards; a nil collector disables metrics.
func New(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) *Simulation {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))

	s := &Simulation{
		logger:      logger,
		rng:         rng,
		collector:   collector,
		cash:        decimal.NewFromFloat(cfg.Simulation.StartCash).Round(2),
		birthYear:   cfg.Simulation.BirthYear,
		currentYear: cfg.Simulation.StartYear,
	}
	s.market = market.New(rng)
	s.ledger = ledger.New(rng, s)
	s.registry = collateral.NewRegistry()
	s.taxes = tax.NewEngine(bracketsFromConfig(cfg.Tax.Brackets), decimal.NewFromFloat(cfg.Tax.StandardDeduction))
	s.credit = credit.NewModel()
	if cfg.Credit.StartingScore != 0 {
		s.credit.Restore(cfg.Credit.StartingScore, nil)
	}
	s.properties = property.NewEngine(s.ledger, s.registry, s.taxes, s.credit, s)
	return s
}

func bracketsFromConfig(in []config.BracketConfig) []tax.Bracket {
	if len(in) == 0 {
		return nil
	}
	out := make([]tax.Bracket, len(in))
	for i, b := range in {
		out[i] = tax.Bracket{
			Lower: decimal.NewFromFloat(b.Lower),
			Upper: decimal.NewFromFloat(b.Upper),
			Rate:  b.Rate,
		}
	}
	return out
}

// Cash returns the caller's liquid cash.
func (s *Simulation) Cash() decimal.Decimal { return s.cash }

// SetCash replaces the caller's liquid cash.
func (s *Simulation) SetCash(c decimal.Decimal) { s.cash = c.Round(2) }

// AddEmploymentRecord appends a year of employment history.
func (s *Simulation) AddEmploymentRecord(r model.EmploymentRecord) {
	s.employment = append(s.employment, r)
}

// AdvanceYear runs one simulated year in fixed order: resolve the
// market regime, accrue interest on every active account, update
// property values and collect rent, pay mortgages, then compute taxes.
// It returns the year's financial events for the caller to render.
func (s *Simulation) AdvanceYear(year int) []model.FinancialEvent {
	regime := s.market.RegimeForYear(year)
	effects := market.Effects(regime)
	events := []model.FinancialEvent{
		model.NewEvent(year, decimal.Zero, fmt.Sprintf("Economy: %s", regime)),
	}

	events = append(events, s.accrueInterest(year)...)
	events = append(events, s.updateProperties(year, effects)...)
	events = append(events, s.payMortgages(year)...)
	events = append(events, s.collectTaxes(year)...)

	for _, prop := range s.properties.Properties() {
		if warning, underwater := s.properties.UnderwaterWarning(prop.ID); underwater {
			events = append(events, model.NewEvent(year, decimal.Zero, warning))
		}
	}

	s.currentYear = year
	net := s.NetWorth()
	s.collector.YearAdvanced()
	s.collector.EventsEmitted(len(events))
	s.collector.SetNetWorth(net.InexactFloat64())
	s.logger.Info("year advanced",
		"year", year,
		"regime", string(regime),
		"events", len(events),
		"cash", s.cash.StringFixed(2),
		"net_worth", net.StringFixed(2))
	return events
}

func (s *Simulation) accrueInterest(year int) []model.FinancialEvent {
	var events []model.FinancialEvent
	for _, acct := range s.ledger.ActiveAccounts() {
		delta, err := s.ledger.ApplyYearlyInterest(acct.ID, year)
		if err != nil || delta.IsZero() {
			continue
		}
		desc := fmt.Sprintf("%s interest", model.Traits(acct.Type).Description)
		events = append(events, model.NewEvent(year, delta, desc))
	}
	return events
}

func (s *Simulation) updateProperties(year int, effects market.RegimeEffects) []model.FinancialEvent {
	var events []model.FinancialEvent
	for _, prop := range s.properties.Properties() {
		delta, err := s.properties.UpdateValue(prop.ID, effects.AppreciationRate, year)
		if err != nil {
			continue
		}
		if !delta.IsZero() {
			events = append(events, model.NewEvent(year, delta,
				fmt.Sprintf("%s in %s value change", prop.Type, prop.Location)))
		}
		if !prop.IsRental {
			continue
		}
		income := s.properties.AnnualRentalIncome(prop)
		expenses := s.properties.AnnualOperatingExpenses(prop)
		if income.IsPositive() {
			s.cash = s.cash.Add(income)
			s.ledger.RecordCash(model.TxnRent, income,
				fmt.Sprintf("Rent from %s", prop.Location), year)
			events = append(events, model.NewEvent(year, income,
				fmt.Sprintf("Rental income from %s", prop.Location)))
		}
		if expenses.IsPositive() {
			s.cash = s.cash.Sub(expenses)
			events = append(events, model.NewEvent(year, expenses.Neg(),
				fmt.Sprintf("Operating costs for %s", prop.Location)))
		}
	}
	return events
}

func (s *Simulation) payMortgages(year int) []model.FinancialEvent {
	var events []model.FinancialEvent
	for _, prop := range s.properties.Properties() {
		due, err := s.properties.AnnualMortgagePayment(prop.ID, year)
		if err != nil || !due.IsPositive() {
			continue
		}
		pay := due
		if s.cash.LessThan(pay) {
			pay = s.cash
		}
		if pay.IsPositive() {
			applied, err := s.ledger.MakePayment(prop.MortgageID, pay, year)
			if err == nil && applied.IsPositive() {
				events = append(events, model.NewEvent(year, applied.Neg(),
					fmt.Sprintf("Mortgage payment on %s", prop.Location)))
			}
		}
		if pay.LessThan(due) {
			s.credit.Adjust(missedPaymentPenalty, year, "missed mortgage payment")
			events = append(events, model.NewEvent(year, decimal.Zero,
				fmt.Sprintf("Missed mortgage payment on %s; credit score hit", prop.Location)))
			s.logger.Warn("missed mortgage payment", "property", prop.ID, "due", due.StringFixed(2))
		}
	}
	return events
}

func (s *Simulation) collectTaxes(year int) []model.FinancialEvent {
	var events []model.FinancialEvent

	charge := func(amount decimal.Decimal, t model.TaxType, desc string, deductions []string) {
		if !amount.IsPositive() {
			return
		}
		s.cash = s.cash.Sub(amount)
		s.ledger.RecordCash(model.TxnTax, amount, desc, year)
		s.taxes.Record(year, amount, t, deductions)
		events = append(events, model.NewEvent(year, amount.Neg(), desc))
	}

	income := decimal.Zero
	for _, r := range s.employment {
		if r.Year == year {
			income = r.AnnualIncome
		}
	}
	if income.IsZero() && len(s.employment) > 0 {
		income = s.employment[len(s.employment)-1].AnnualIncome
	}

	charge(s.taxes.IncomeTax(income), model.TaxIncome, "Income tax", []string{"standard deduction"})
	charge(s.taxes.PropertyTax(s.properties.Properties()), model.TaxProperty, "Property tax", nil)
	charge(s.taxes.InterestIncomeTax(s.ledger.Log(), year), model.TaxInterest, "Interest income tax", nil)

	if s.cash.IsNegative() {
		s.logger.Warn("cash went negative after taxes", "year", year, "cash", s.cash.StringFixed(2))
	}
	return events
}

// OpenAccount opens an account of the given type. Debt-class types are
// loan originations: they pass the eligibility gate, carry the credit
// rate modifier and the regime interest effect, and disburse the
// principal to cash.
func (s *Simulation) OpenAccount(t model.AccountType, amount decimal.Decimal, termYears int) (*model.Account, error) {
	traits := model.Traits(t)
	adjust := market.Effects(s.market.Current()).InterestEffect
	disburse := false

	if traits.Class == model.ClassDebt && !traits.Revolving {
		term := termYears
		if term <= 0 {
			term = traits.DefaultTerm
		}
		monthly := amort.MonthlyPayment(amount.Abs(), (traits.BaseRate+adjust)/12, term*12)
		if err := credit.CheckEligibility(t, s.ledger.ActiveAccounts(), s.employment, monthly, s.currentYear); err != nil {
			s.collector.Operation("open_account", err)
			return nil, err
		}
		adjust += s.credit.RateModifier()
		disburse = true
	}

	acct, err := s.ledger.OpenAccount(ledger.OpenParams{
		Type:          t,
		InitialAmount: amount,
		TermYears:     termYears,
		Year:          s.currentYear,
		RateAdjust:    adjust,
		Disburse:      disburse,
	})
	s.collector.Operation("open_account", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account opened", "type", string(t), "id", acct.ID, "rate", acct.InterestRate)
	return acct, nil
}

// Deposit moves cash into an account.
func (s *Simulation) Deposit(accountID int, amount decimal.Decimal) error {
	err := s.ledger.Deposit(accountID, amount, s.currentYear)
	s.collector.Operation("deposit", err)
	return err
}

// Withdraw moves money from an account to cash.
func (s *Simulation) Withdraw(accountID int, amount decimal.Decimal) error {
	err := s.ledger.Withdraw(accountID, amount, s.currentYear)
	s.collector.Operation("withdraw", err)
	return err
}

// MakePayment pays cash toward a debt account.
func (s *Simulation) MakePayment(accountID int, amount decimal.Decimal) (decimal.Decimal, error) {
	applied, err := s.ledger.MakePayment(accountID, amount, s.currentYear)
	s.collector.Operation("make_payment", err)
	return applied, err
}

// Transfer moves money between two asset accounts.
func (s *Simulation) Transfer(fromID, toID int, amount decimal.Decimal) error {
	err := s.ledger.Transfer(fromID, toID, amount, s.currentYear)
	s.collector.Operation("transfer", err)
	return err
}

// CloseAccount closes an account, settling any balance to cash.
func (s *Simulation) CloseAccount(accountID int) (decimal.Decimal, error) {
	final, err := s.ledger.CloseAccount(accountID)
	s.collector.Operation("close_account", err)
	return final, err
}

// BuyProperty purchases a property, financing anything the down payment
// does not cover.
func (s *Simulation) BuyProperty(p property.CreateParams) (*model.PropertyInvestment, *model.Account, error) {
	if p.Year == 0 {
		p.Year = s.currentYear
	}
	p.RateAdjust = market.Effects(s.market.Current()).InterestEffect + s.credit.RateModifier()
	prop, mortgage, err := s.properties.Create(p)
	s.collector.Operation("buy_property", err)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("property purchased", "id", prop.ID, "value", prop.PurchasePrice.StringFixed(2), "rental", prop.IsRental)
	return prop, mortgage, nil
}

// SellProperty sells a property at the given price.
func (s *Simulation) SellProperty(propertyID int, price decimal.Decimal) (*property.SaleResult, error) {
	res, err := s.properties.Sell(propertyID, price, s.currentYear)
	s.collector.Operation("sell_property", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("property sold", "id", propertyID, "proceeds", res.NetProceeds.StringFixed(2))
	return res, nil
}

// RefinanceProperty replaces a property's mortgage, optionally pulling
// cash out of equity.
func (s *Simulation) RefinanceProperty(propertyID, newTerm int, cashOut decimal.Decimal) (*model.Account, error) {
	acct, err := s.properties.Refinance(propertyID, newTerm, cashOut, s.currentYear, s.employment)
	s.collector.Operation("refinance", err)
	return acct, err
}

// ConvertToRental flips a primary residence into a rental.
func (s *Simulation) ConvertToRental(propertyID int, monthlyRent decimal.Decimal) error {
	err := s.properties.ConvertToRental(propertyID, monthlyRent, s.currentYear)
	s.collector.Operation("convert_to_rental", err)
	return err
}

// NetWorth is cash plus asset balances plus property values, minus all
// outstanding debt.
func (s *Simulation) NetWorth() decimal.Decimal {
	net := s.cash.Add(s.ledger.TotalAssets()).Sub(s.ledger.TotalDebt())
	for _, prop := range s.properties.Properties() {
		net = net.Add(prop.CurrentValue)
	}
	return net
}

// Component accessors, used by persistence and the CLI report surface.

func (s *Simulation) Ledger() *ledger.Ledger           { return s.ledger }
func (s *Simulation) Properties() *property.Engine     { return s.properties }
func (s *Simulation) Collateral() *collateral.Registry { return s.registry }
func (s *Simulation) Taxes() *tax.Engine               { return s.taxes }
func (s *Simulation) Credit() *credit.Model            { return s.credit }
func (s *Simulation) Market() *market.Model            { return s.market }

// CurrentYear returns the latest simulated year.
func (s *Simulation) CurrentYear() int { return s.currentYear }

// SetCurrentYear is used by snapshot restore.
func (s *Simulation) SetCurrentYear(year int) { s.currentYear = year }

// BirthYear returns the configured birth year.
func (s *Simulation) BirthYear() int { return s.birthYear }

// Employment returns the read-only employment history.
func (s *Simulation) Employment() []model.EmploymentRecord { return s.employment }

// SetEmployment is used by snapshot restore.
func (s *Simulation) SetEmployment(records []model.EmploymentRecord) { s.employment = records }
