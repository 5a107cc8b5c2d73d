package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/dkrylova/aftersale/internal/repository"
)

// Key identifies one fee rule: which airline, cabin and kind of change.
type Key struct {
	AirlineCode string
	CabinClass  string
	Kind        domain.ApplicationKind
	ChangeKind  domain.ChangeKind
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", k.AirlineCode, k.CabinClass, k.Kind, k.ChangeKind)
}

type Cache interface {
	GetPolicies(ctx context.Context, key string) ([]domain.FeePolicy, error)
	SetPolicies(ctx context.Context, key string, policies []domain.FeePolicy) error
}

type Resolver struct {
	policies repository.PolicyRepository
	cache    Cache
}

func NewResolver(policies repository.PolicyRepository, cache Cache) *Resolver {
	return &Resolver{policies: policies, cache: cache}
}

// Resolve picks the policy in force at asOf for the key. When misconfigured
// overlapping ranges make several candidates effective, the latest
// effective-start date wins. No match is a hard failure; the caller must not
// proceed to any monetary computation.
func (r *Resolver) Resolve(ctx context.Context, key Key, asOf time.Time) (*domain.FeePolicy, error) {
	candidates, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}

	var chosen *domain.FeePolicy
	for i := range candidates {
		p := &candidates[i]
		if !p.EffectiveAt(asOf) {
			continue
		}
		if chosen == nil || p.EffectiveFrom.After(chosen.EffectiveFrom) {
			chosen = p
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrPolicyNotFound, key)
	}
	if !chosen.ClampValid() {
		return nil, fmt.Errorf("%w: policy %d has max fee below min fee", domain.ErrPolicyInvalid, chosen.ID)
	}

	out := *chosen
	return &out, nil
}

func (r *Resolver) load(ctx context.Context, key Key) ([]domain.FeePolicy, error) {
	if r.cache != nil {
		if cached, err := r.cache.GetPolicies(ctx, key.String()); err == nil && cached != nil {
			return cached, nil
		}
	}

	policies, err := r.policies.ListByKey(ctx, key.AirlineCode, key.CabinClass, key.Kind, key.ChangeKind)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		_ = r.cache.SetPolicies(ctx, key.String(), policies)
	}
	return policies, nil
}

// AirlineFromFlightNo extracts the two-letter carrier code from a flight
// number such as MU585.
func AirlineFromFlightNo(flightNo string) string {
	if len(flightNo) < 2 {
		return ""
	}
	return strings.ToUpper(flightNo[:2])
}
