package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// The four categories every deployment ships with. They can be
// deactivated but never deleted.
const (
	TypePaidLeave    = "PAID_LEAVE"
	TypeSickLeave    = "SICK_LEAVE"
	TypeUnpaidLeave  = "UNPAID_LEAVE"
	TypeSpecialLeave = "SPECIAL_LEAVE"
)

var systemTypeNames = map[string]bool{
	TypePaidLeave:    true,
	TypeSickLeave:    true,
	TypeUnpaidLeave:  true,
	TypeSpecialLeave: true,
}

type LeaveType struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Description            string          `json:"description"`
	RequiresApproval       bool            `json:"requiresApproval"`
	IsPaid                 bool            `json:"isPaid"`
	DeductsFromBalance     bool            `json:"deductsFromBalance"`
	MaxDaysPerYear         decimal.Decimal `json:"maxDaysPerYear"`
	DefaultAnnualAllowance decimal.Decimal `json:"defaultAnnualAllowance"`
	AllowCarryOver         bool            `json:"allowCarryOver"`
	// MaxCarryOverDays caps year-end rollover. Zero means uncapped.
	MaxCarryOverDays int        `json:"maxCarryOverDays"`
	IsActive         bool       `json:"isActive"`
	Color            string     `json:"color"`
	DisplayOrder     int        `json:"displayOrder"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// IsSystemType reports whether this type is one of the fixed categories
// seeded at deployment time.
func (t LeaveType) IsSystemType() bool {
	return systemTypeNames[t.Name]
}

// TypeSpec is the payload for creating a leave type.
type TypeSpec struct {
	Name                   string          `json:"name"`
	Description            string          `json:"description"`
	RequiresApproval       bool            `json:"requiresApproval"`
	IsPaid                 bool            `json:"isPaid"`
	DeductsFromBalance     bool            `json:"deductsFromBalance"`
	MaxDaysPerYear         decimal.Decimal `json:"maxDaysPerYear"`
	DefaultAnnualAllowance decimal.Decimal `json:"defaultAnnualAllowance"`
	AllowCarryOver         bool            `json:"allowCarryOver"`
	MaxCarryOverDays       int             `json:"maxCarryOverDays"`
	Color                  string          `json:"color"`
	DisplayOrder           int             `json:"displayOrder"`
}

// TypePatch is a partial update. Nil fields are left untouched, not
// reset.
type TypePatch struct {
	Name                   *string          `json:"name,omitempty"`
	Description            *string          `json:"description,omitempty"`
	RequiresApproval       *bool            `json:"requiresApproval,omitempty"`
	IsPaid                 *bool            `json:"isPaid,omitempty"`
	DeductsFromBalance     *bool            `json:"deductsFromBalance,omitempty"`
	MaxDaysPerYear         *decimal.Decimal `json:"maxDaysPerYear,omitempty"`
	DefaultAnnualAllowance *decimal.Decimal `json:"defaultAnnualAllowance,omitempty"`
	AllowCarryOver         *bool            `json:"allowCarryOver,omitempty"`
	MaxCarryOverDays       *int             `json:"maxCarryOverDays,omitempty"`
	IsActive               *bool            `json:"isActive,omitempty"`
	Color                  *string          `json:"color,omitempty"`
	DisplayOrder           *int             `json:"displayOrder,omitempty"`
}
