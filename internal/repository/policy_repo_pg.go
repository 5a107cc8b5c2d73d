package repository

import (
	"context"
	"time"

	"github.com/dkrylova/aftersale/internal/domain"
)

type PolicyRepository interface {
	// ListByKey returns every policy configured for the combination,
	// regardless of effective range; the resolver picks the applicable one.
	ListByKey(ctx context.Context, airlineCode, cabinClass string, kind domain.ApplicationKind, changeKind domain.ChangeKind) ([]domain.FeePolicy, error)
}

type PGPolicyRepository struct {
	db Querier
}

func NewPolicyRepository(db Querier) PolicyRepository {
	return &PGPolicyRepository{db: db}
}

func (r *PGPolicyRepository) ListByKey(ctx context.Context, airlineCode, cabinClass string, kind domain.ApplicationKind, changeKind domain.ChangeKind) ([]domain.FeePolicy, error) {
	rows, err := r.db.Query(ctx, `SELECT id, airline_code, cabin_class, kind, change_kind, fee_rate_bps, min_fee_cents, max_fee_cents, effective_from, effective_to, description
		FROM fee_policies WHERE airline_code=$1 AND cabin_class=$2 AND kind=$3 AND change_kind=$4`,
		airlineCode, cabinClass, kind, changeKind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make([]domain.FeePolicy, 0)
	for rows.Next() {
		var p domain.FeePolicy
		var effectiveTo *time.Time
		if err := rows.Scan(&p.ID, &p.AirlineCode, &p.CabinClass, &p.Kind, &p.ChangeKind, &p.FeeRateBps, &p.MinFeeCents, &p.MaxFeeCents, &p.EffectiveFrom, &effectiveTo, &p.Description); err != nil {
			return nil, err
		}
		if effectiveTo != nil {
			p.EffectiveTo = *effectiveTo
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

var _ PolicyRepository = (*PGPolicyRepository)(nil)
