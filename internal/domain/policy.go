package domain

import "time"

// FeePolicy is reference data describing how to price a refund or rebooking
// for one (airline, cabin, kind, change kind) combination. Read-only to the
// engine.
type FeePolicy struct {
	ID            int64
	AirlineCode   string
	CabinClass    string
	Kind          ApplicationKind
	ChangeKind    ChangeKind
	FeeRateBps    int32
	MinFeeCents   *int64
	MaxFeeCents   *int64
	EffectiveFrom time.Time
	EffectiveTo   time.Time
	Description   string
}

// EffectiveAt reports whether the policy is in force at the given time.
// EffectiveTo is inclusive; a zero EffectiveTo means open-ended.
func (p *FeePolicy) EffectiveAt(at time.Time) bool {
	if at.Before(p.EffectiveFrom) {
		return false
	}
	return p.EffectiveTo.IsZero() || !at.After(p.EffectiveTo)
}

// ClampValid reports whether the configured min/max bounds are consistent.
// A max below a min is a configuration error and must be rejected, never
// silently reordered.
func (p *FeePolicy) ClampValid() bool {
	if p.MinFeeCents == nil || p.MaxFeeCents == nil {
		return true
	}
	return *p.MaxFeeCents >= *p.MinFeeCents
}
