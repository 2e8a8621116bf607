package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Catalog manages the leave type policies the engine reads. It is a
// store-backed peer of the engine, injected where needed rather than
// held as process-wide state.
type Catalog struct {
	Store StoreAPI
}

func NewCatalog(store StoreAPI) *Catalog {
	return &Catalog{Store: store}
}

func (c *Catalog) Create(ctx context.Context, spec TypeSpec) (LeaveType, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return LeaveType{}, errors.New("leave type name is required")
	}

	taken, err := c.Store.TypeNameExists(ctx, name, "")
	if err != nil {
		return LeaveType{}, err
	}
	if taken {
		return LeaveType{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	return c.Store.CreateType(ctx, LeaveType{
		Name:                   name,
		Description:            spec.Description,
		RequiresApproval:       spec.RequiresApproval,
		IsPaid:                 spec.IsPaid,
		DeductsFromBalance:     spec.DeductsFromBalance,
		MaxDaysPerYear:         spec.MaxDaysPerYear,
		DefaultAnnualAllowance: spec.DefaultAnnualAllowance,
		AllowCarryOver:         spec.AllowCarryOver,
		MaxCarryOverDays:       spec.MaxCarryOverDays,
		IsActive:               true,
		Color:                  spec.Color,
		DisplayOrder:           spec.DisplayOrder,
	})
}

// Update applies the non-nil fields of the patch. A rename is checked
// against every other type, case-insensitively.
func (c *Catalog) Update(ctx context.Context, id string, patch TypePatch) (LeaveType, error) {
	t, err := c.Store.GetType(ctx, id)
	if err != nil {
		return LeaveType{}, err
	}

	if patch.Name != nil && !strings.EqualFold(*patch.Name, t.Name) {
		taken, err := c.Store.TypeNameExists(ctx, *patch.Name, id)
		if err != nil {
			return LeaveType{}, err
		}
		if taken {
			return LeaveType{}, fmt.Errorf("%w: %s", ErrDuplicateName, *patch.Name)
		}
		t.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.RequiresApproval != nil {
		t.RequiresApproval = *patch.RequiresApproval
	}
	if patch.IsPaid != nil {
		t.IsPaid = *patch.IsPaid
	}
	if patch.DeductsFromBalance != nil {
		t.DeductsFromBalance = *patch.DeductsFromBalance
	}
	if patch.MaxDaysPerYear != nil {
		t.MaxDaysPerYear = *patch.MaxDaysPerYear
	}
	if patch.DefaultAnnualAllowance != nil {
		t.DefaultAnnualAllowance = *patch.DefaultAnnualAllowance
	}
	if patch.AllowCarryOver != nil {
		t.AllowCarryOver = *patch.AllowCarryOver
	}
	if patch.MaxCarryOverDays != nil {
		t.MaxCarryOverDays = *patch.MaxCarryOverDays
	}
	if patch.IsActive != nil {
		t.IsActive = *patch.IsActive
	}
	if patch.Color != nil {
		t.Color = *patch.Color
	}
	if patch.DisplayOrder != nil {
		t.DisplayOrder = *patch.DisplayOrder
	}

	return c.Store.UpdateType(ctx, t)
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	t, err := c.Store.GetType(ctx, id)
	if err != nil {
		return err
	}
	if t.IsSystemType() {
		return fmt.Errorf("%w: %s", ErrProtectedType, t.Name)
	}

	// TODO: block deletion when leave requests reference this type once
	// the request workflow lands.
	return c.Store.DeleteType(ctx, id)
}

// ToggleActive flips the active flag. Existing ledger rows for an
// inactive type stay valid; the type is only excluded from new
// initializations.
func (c *Catalog) ToggleActive(ctx context.Context, id string) (LeaveType, error) {
	t, err := c.Store.GetType(ctx, id)
	if err != nil {
		return LeaveType{}, err
	}
	t.IsActive = !t.IsActive
	return c.Store.UpdateType(ctx, t)
}

func (c *Catalog) List(ctx context.Context) ([]LeaveType, error) {
	return c.Store.ListTypes(ctx)
}

func (c *Catalog) ListActive(ctx context.Context) ([]LeaveType, error) {
	return c.Store.ListActiveTypes(ctx)
}

func (c *Catalog) Get(ctx context.Context, id string) (LeaveType, error) {
	return c.Store.GetType(ctx, id)
}

func (c *Catalog) Search(ctx context.Context, query string) ([]LeaveType, error) {
	return c.Store.SearchTypes(ctx, query)
}

// IsNameAvailable performs the case-insensitive existence check used by
// both the create and rename validation paths.
func (c *Catalog) IsNameAvailable(ctx context.Context, name, excludeID string) (bool, error) {
	taken, err := c.Store.TypeNameExists(ctx, name, excludeID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
