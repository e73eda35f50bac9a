package models

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is the exchange rate of a trade. It is either known or still pending,
// which is the case for conditional trades whose price is settled later.
type Rate struct {
	value decimal.Decimal
	known bool
}

// KnownRate returns a settled rate.
func KnownRate(d decimal.Decimal) Rate {
	return Rate{value: d, known: true}
}

// PendingRate returns a rate that has not been agreed yet.
func PendingRate() Rate {
	return Rate{}
}

// Value returns the rate and whether it is known.
func (r Rate) Value() (decimal.Decimal, bool) {
	return r.value, r.known
}

// IsKnown reports whether the rate has been settled.
func (r Rate) IsKnown() bool {
	return r.known
}

// Equal reports whether both rates are pending or both known and equal.
func (r Rate) Equal(o Rate) bool {
	if r.known != o.known {
		return false
	}
	return !r.known || r.value.Equal(o.value)
}

func (r Rate) String() string {
	if !r.known {
		return "pending"
	}
	return r.value.String()
}

// MarshalJSON encodes a pending rate as null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.known {
		return []byte("null"), nil
	}
	return r.value.MarshalJSON()
}

// UnmarshalJSON decodes null as a pending rate.
func (r *Rate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = PendingRate()
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid rate: %w", err)
	}
	*r = KnownRate(d)
	return nil
}

// RatePatch is the rate member of a TransactionPatch. Set records that the
// key was present, so an explicit null can put a rate back to pending.
type RatePatch struct {
	Set  bool
	Rate Rate
}

// SetRate returns a patch that replaces the rate with r.
func SetRate(r Rate) RatePatch {
	return RatePatch{Set: true, Rate: r}
}

func (p RatePatch) MarshalJSON() ([]byte, error) {
	return p.Rate.MarshalJSON()
}

// UnmarshalJSON is only reached when the key is present, null included.
func (p *RatePatch) UnmarshalJSON(data []byte) error {
	if err := p.Rate.UnmarshalJSON(data); err != nil {
		return err
	}
	p.Set = true
	return nil
}
