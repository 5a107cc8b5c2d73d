package fee

import (
	"fmt"

	"github.com/dkrylova/aftersale/internal/domain"
)

// Breakdown is the priced outcome of applying one fee policy to a fare.
type Breakdown struct {
	FareCents      int64
	FeeCents       int64
	NetRefundCents int64
}

// Quote is the total charge of a rebooking. A cheaper new flight lowers the
// total but never the change fee itself, and the total never drops below the
// fixed fees.
type Quote struct {
	ChangeFeeCents      int64
	FareDifferenceCents int64
	ServiceFeeCents     int64
	TotalCents          int64
}

// Calculate applies a policy to a base fare: rate first, then the floor,
// then the ceiling. Pure function; inputs are never mutated.
func Calculate(fareCents int64, p *domain.FeePolicy) (Breakdown, error) {
	if fareCents < 0 {
		return Breakdown{}, fmt.Errorf("%w: negative fare", domain.ErrValidation)
	}
	if p.FeeRateBps < 0 {
		return Breakdown{}, fmt.Errorf("%w: policy %d has a negative rate", domain.ErrPolicyInvalid, p.ID)
	}
	if !p.ClampValid() {
		return Breakdown{}, fmt.Errorf("%w: policy %d has max fee below min fee", domain.ErrPolicyInvalid, p.ID)
	}

	feeCents := domain.ApplyRateBps(fareCents, p.FeeRateBps)
	if p.MinFeeCents != nil && feeCents < *p.MinFeeCents {
		feeCents = *p.MinFeeCents
	}
	if p.MaxFeeCents != nil && feeCents > *p.MaxFeeCents {
		feeCents = *p.MaxFeeCents
	}

	return Breakdown{
		FareCents:      fareCents,
		FeeCents:       feeCents,
		NetRefundCents: fareCents - feeCents,
	}, nil
}

// RebookingQuote prices a flight change: the positive part of the fare
// difference plus the change fee plus the flat service fee.
func RebookingQuote(originalFareCents, newFareCents, changeFeeCents, serviceFeeCents int64) (Quote, error) {
	if originalFareCents < 0 || newFareCents < 0 {
		return Quote{}, fmt.Errorf("%w: negative fare", domain.ErrValidation)
	}

	diff := newFareCents - originalFareCents
	charged := diff
	if charged < 0 {
		charged = 0
	}

	return Quote{
		ChangeFeeCents:      changeFeeCents,
		FareDifferenceCents: diff,
		ServiceFeeCents:     serviceFeeCents,
		TotalCents:          charged + changeFeeCents + serviceFeeCents,
	}, nil
}
