// Package collateral owns pledgeable assets and their lifecycle: value
// drift by type, pledging against loans, repossession.
package collateral

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finsim-dev/finsim/internal/model"
)

// Registry is the arena of collateral assets keyed by integer handles.
type Registry struct {
	assets map[int]*model.CollateralAsset
	order  []int
	nextID int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{assets: make(map[int]*model.CollateralAsset), nextID: 1}
}

// Register adds a new asset and returns it.
func (r *Registry) Register(t model.CollateralType, baseValue decimal.Decimal, purchaseYear int) (*model.CollateralAsset, error) {
	baseValue = baseValue.Round(2)
	if !baseValue.IsPositive() {
		return nil, model.ErrInvalidAmount
	}
	asset := &model.CollateralAsset{
		ID:           r.nextID,
		Type:         t,
		BaseValue:    baseValue,
		PurchaseYear: purchaseYear,
	}
	r.assets[asset.ID] = asset
	r.order = append(r.order, asset.ID)
	r.nextID++
	return asset, nil
}

// Pledge links an available asset to a loan account.
func (r *Registry) Pledge(assetID, loanID int) error {
	asset, err := r.Asset(assetID)
	if err != nil {
		return err
	}
	if !asset.IsAvailable() {
		return fmt.Errorf("collateral %d is already pledged or repossessed", assetID)
	}
	asset.LoanID = loanID
	return nil
}

// Release unlinks an asset from its loan, e.g. after payoff.
func (r *Registry) Release(assetID int) error {
	asset, err := r.Asset(assetID)
	if err != nil {
		return err
	}
	asset.LoanID = 0
	return nil
}

// Repossess marks an asset seized; it can no longer secure loans.
func (r *Registry) Repossess(assetID int) error {
	asset, err := r.Asset(assetID)
	if err != nil {
		return err
	}
	asset.Repossessed = true
	asset.LoanID = 0
	return nil
}

// Remove deletes an asset, e.g. when the underlying property is sold.
func (r *Registry) Remove(assetID int) error {
	if _, ok := r.assets[assetID]; !ok {
		return &model.NotFoundError{Kind: "collateral", ID: assetID}
	}
	delete(r.assets, assetID)
	for i, id := range r.order {
		if id == assetID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Asset looks up an asset by handle.
func (r *Registry) Asset(assetID int) (*model.CollateralAsset, error) {
	asset, ok := r.assets[assetID]
	if !ok {
		return nil, &model.NotFoundError{Kind: "collateral", ID: assetID}
	}
	return asset, nil
}

// Assets returns every asset in registration order.
func (r *Registry) Assets() []*model.CollateralAsset {
	out := make([]*model.CollateralAsset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.assets[id])
	}
	return out
}

// Available returns assets free to pledge, in registration order.
func (r *Registry) Available() []*model.CollateralAsset {
	var out []*model.CollateralAsset
	for _, id := range r.order {
		if a := r.assets[id]; a.IsAvailable() {
			out = append(out, a)
		}
	}
	return out
}

// TotalValue sums current values of unrepossessed assets.
func (r *Registry) TotalValue(year int) decimal.Decimal {
	total := decimal.Zero
	for _, id := range r.order {
		if a := r.assets[id]; !a.Repossessed {
			total = total.Add(a.CurrentValue(year))
		}
	}
	return total
}

// Restore rebuilds registry state from persisted records.
func (r *Registry) Restore(assets []*model.CollateralAsset, nextID int) {
	r.assets = make(map[int]*model.CollateralAsset, len(assets))
	r.order = r.order[:0]
	for _, a := range assets {
		r.assets[a.ID] = a
		r.order = append(r.order, a.ID)
	}
	r.nextID = nextID
}

// NextID exposes the arena cursor for persistence.
func (r *Registry) NextID() int { return r.nextID }
