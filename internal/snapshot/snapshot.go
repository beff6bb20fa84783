// Package snapshot defines the versioned persistence schema for the
// financial core. Encoding is plain JSON handed to the external
// serializer; decoding runs an explicit migration step first, and any
// field the current schema cannot account for is an error rather than a
// silent default.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finsim-dev/finsim/internal/credit"
	"github.com/finsim-dev/finsim/internal/model"
	"github.com/finsim-dev/finsim/internal/sim"
)

// CurrentVersion is the schema written by Encode. Version 1 predates
// the rental occupancy and management-fee fields.
const CurrentVersion = 2

// Snapshot is the full serializable state of the financial core.
type Snapshot struct {
	SchemaVersion int             `json:"schema_version"`
	CurrentYear   int             `json:"current_year"`
	BirthYear     int             `json:"birth_year"`
	Cash          decimal.Decimal `json:"cash"`

	Accounts      []accountRecord     `json:"accounts"`
	GlobalLog     []model.Transaction `json:"global_log"`
	NextAccountID int                 `json:"next_account_id"`

	Collateral       []*model.CollateralAsset `json:"collateral"`
	NextCollateralID int                      `json:"next_collateral_id"`

	Properties     []propertyRecord `json:"properties"`
	NextPropertyID int              `json:"next_property_id"`

	TaxHistory []model.TaxPayment `json:"tax_history"`

	CreditScore   int                 `json:"credit_score"`
	CreditHistory []credit.Adjustment `json:"credit_history"`

	Regimes    []regimeRecord           `json:"regimes"`
	Employment []model.EmploymentRecord `json:"employment"`
}

type accountRecord struct {
	ID           int                 `json:"id"`
	Type         model.AccountType   `json:"type"`
	Balance      decimal.Decimal     `json:"balance"`
	InterestRate float64             `json:"interest_rate"`
	TermYears    int                 `json:"term_years"`
	CreationYear int                 `json:"creation_year"`
	CollateralID int                 `json:"collateral_id"`
	PropertyID   int                 `json:"property_id"`
	CreditLimit  decimal.Decimal     `json:"credit_limit"`
	Active       bool                `json:"active"`
	Transactions []model.Transaction `json:"transactions"`
}

type propertyRecord struct {
	ID                int                `json:"id"`
	CollateralID      int                `json:"collateral_id"`
	Type              model.PropertyType `json:"type"`
	Location          string             `json:"location"`
	PurchasePrice     decimal.Decimal    `json:"purchase_price"`
	PurchaseYear      int                `json:"purchase_year"`
	CurrentValue      decimal.Decimal    `json:"current_value"`
	IsRental          bool               `json:"is_rental"`
	MonthlyRent       decimal.Decimal    `json:"monthly_rent"`
	OccupancyRate     float64            `json:"occupancy_rate"`
	MortgageID        int                `json:"mortgage_id"`
	MortgageTerm      int                `json:"mortgage_term"`
	MortgageYearsLeft int                `json:"mortgage_years_left"`
	TaxRate           float64            `json:"tax_rate"`
	InsuranceRate     float64            `json:"insurance_rate"`
	MaintenanceRate   float64            `json:"maintenance_rate"`
	ManagementFeeRate float64            `json:"management_fee_rate"`
}

type regimeRecord struct {
	Year   int                `json:"year"`
	Regime model.MarketRegime `json:"regime"`
}

// Encode captures the simulation's full state at the current schema
// version.
func Encode(s *sim.Simulation) ([]byte, error) {
	snap := Snapshot{
		SchemaVersion:    CurrentVersion,
		CurrentYear:      s.CurrentYear(),
		BirthYear:        s.BirthYear(),
		Cash:             s.Cash(),
		GlobalLog:        s.Ledger().Log(),
		NextAccountID:    s.Ledger().NextID(),
		Collateral:       s.Collateral().Assets(),
		NextCollateralID: s.Collateral().NextID(),
		NextPropertyID:   s.Properties().NextID(),
		TaxHistory:       s.Taxes().History(),
		CreditScore:      s.Credit().Score(),
		CreditHistory:    s.Credit().History(),
		Employment:       s.Employment(),
	}
	for _, a := range s.Ledger().Accounts() {
		snap.Accounts = append(snap.Accounts, accountRecord{
			ID:           a.ID,
			Type:         a.Type,
			Balance:      a.Balance,
			InterestRate: a.InterestRate,
			TermYears:    a.TermYears,
			CreationYear: a.CreationYear,
			CollateralID: a.CollateralID,
			PropertyID:   a.PropertyID,
			CreditLimit:  a.CreditLimit,
			Active:       a.Active,
			Transactions: a.Transactions,
		})
	}
	for _, p := range s.Properties().Properties() {
		snap.Properties = append(snap.Properties, propertyRecord(*p))
	}
	for year, regime := range s.Market().History() {
		snap.Regimes = append(snap.Regimes, regimeRecord{Year: year, Regime: regime})
	}
	return json.MarshalIndent(snap, "", "  ")
}

// Apply restores a simulation from encoded state, migrating older
// schema versions first.
func Apply(s *sim.Simulation, data []byte) error {
	snap, err := decode(data)
	if err != nil {
		return err
	}

	accounts := make([]*model.Account, 0, len(snap.Accounts))
	for _, r := range snap.Accounts {
		a := model.Account(r)
		accounts = append(accounts, &a)
	}
	s.Ledger().Restore(accounts, snap.GlobalLog, snap.NextAccountID)

	s.Collateral().Restore(snap.Collateral, snap.NextCollateralID)

	properties := make([]*model.PropertyInvestment, 0, len(snap.Properties))
	for _, r := range snap.Properties {
		p := model.PropertyInvestment(r)
		properties = append(properties, &p)
	}
	s.Properties().Restore(properties, snap.NextPropertyID)

	s.Taxes().Restore(snap.TaxHistory)
	s.Credit().Restore(snap.CreditScore, snap.CreditHistory)
	for _, r := range snap.Regimes {
		s.Market().SetRegime(r.Year, r.Regime)
	}
	s.SetEmployment(snap.Employment)
	s.SetCash(snap.Cash)
	s.SetCurrentYear(snap.CurrentYear)
	return nil
}

func decode(data []byte) (*Snapshot, error) {
	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}

	switch probe.SchemaVersion {
	case 1:
		migrated, err := migrateV1(data)
		if err != nil {
			return nil, err
		}
		data = migrated
	case CurrentVersion:
		// current schema, nothing to do
	default:
		return nil, fmt.Errorf("unsupported snapshot schema version %d", probe.SchemaVersion)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

// migrateV1 upgrades a version-1 snapshot: rentals gained explicit
// occupancy and management-fee fields in version 2, so the old implied
// defaults become explicit values.
func migrateV1(data []byte) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("reading v1 snapshot: %w", err)
	}

	var props []map[string]any
	if rawProps, ok := raw["properties"]; ok {
		if err := json.Unmarshal(rawProps, &props); err != nil {
			return nil, fmt.Errorf("reading v1 properties: %w", err)
		}
	}
	for _, p := range props {
		isRental, _ := p["is_rental"].(bool)
		if _, ok := p["occupancy_rate"]; !ok {
			if isRental {
				p["occupancy_rate"] = 0.90
			} else {
				p["occupancy_rate"] = 0.0
			}
		}
		if _, ok := p["management_fee_rate"]; !ok {
			if isRental {
				p["management_fee_rate"] = 0.08
			} else {
				p["management_fee_rate"] = 0.0
			}
		}
	}
	if props != nil {
		migrated, err := json.Marshal(props)
		if err != nil {
			return nil, err
		}
		raw["properties"] = migrated
	}

	raw["schema_version"] = json.RawMessage(fmt.Sprintf("%d", CurrentVersion))
	return json.Marshal(raw)
}
