package policy

import (
	"context"
	"testing"
	"time"

	"github.com/dkrylova/aftersale/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) ListByKey(ctx context.Context, airlineCode, cabinClass string, kind domain.ApplicationKind, changeKind domain.ChangeKind) ([]domain.FeePolicy, error) {
	args := m.Called(ctx, airlineCode, cabinClass, kind, changeKind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeePolicy), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetPolicies(ctx context.Context, key string) ([]domain.FeePolicy, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeePolicy), args.Error(1)
}

func (m *MockCache) SetPolicies(ctx context.Context, key string, policies []domain.FeePolicy) error {
	args := m.Called(ctx, key, policies)
	return args.Error(0)
}

var testKey = Key{AirlineCode: "MU", CabinClass: "ECONOMY", Kind: domain.ApplicationKindRefund, ChangeKind: domain.ChangeKindVoluntary}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestResolver_Resolve_PicksEffectivePolicy(t *testing.T) {
	repo := &MockPolicyRepository{}
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	policies := []domain.FeePolicy{
		{ID: 1, FeeRateBps: 500, EffectiveFrom: day(2024, 1, 1), EffectiveTo: day(2024, 12, 31)},
		{ID: 2, FeeRateBps: 1000, EffectiveFrom: day(2025, 1, 1)},
	}
	repo.On("ListByKey", ctx, "MU", "ECONOMY", domain.ApplicationKindRefund, domain.ChangeKindVoluntary).Return(policies, nil).Once()

	resolved, err := resolver.Resolve(ctx, testKey, day(2025, 6, 1))

	assert.NoError(t, err)
	assert.Equal(t, int64(2), resolved.ID)
	repo.AssertExpectations(t)
}

func TestResolver_Resolve_NotFound(t *testing.T) {
	repo := &MockPolicyRepository{}
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	repo.On("ListByKey", ctx, "MU", "ECONOMY", domain.ApplicationKindRefund, domain.ChangeKindVoluntary).Return([]domain.FeePolicy{}, nil).Once()

	_, err := resolver.Resolve(ctx, testKey, day(2025, 6, 1))

	assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
}

func TestResolver_Resolve_NoneEffective(t *testing.T) {
	repo := &MockPolicyRepository{}
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	policies := []domain.FeePolicy{
		{ID: 1, EffectiveFrom: day(2024, 1, 1), EffectiveTo: day(2024, 6, 30)},
	}
	repo.On("ListByKey", ctx, "MU", "ECONOMY", domain.ApplicationKindRefund, domain.ChangeKindVoluntary).Return(policies, nil).Once()

	_, err := resolver.Resolve(ctx, testKey, day(2025, 6, 1))

	assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
}

func TestResolver_Resolve_OverlapTieBreaksOnLatestStart(t *testing.T) {
	repo := &MockPolicyRepository{}
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	// Misconfigured overlapping ranges: the later effective-start wins.
	policies := []domain.FeePolicy{
		{ID: 1, FeeRateBps: 500, EffectiveFrom: day(2025, 1, 1), EffectiveTo: day(2025, 12, 31)},
		{ID: 2, FeeRateBps: 1500, EffectiveFrom: day(2025, 3, 1), EffectiveTo: day(2025, 12, 31)},
	}
	repo.On("ListByKey", ctx, "MU", "ECONOMY", domain.ApplicationKindRefund, domain.ChangeKindVoluntary).Return(policies, nil).Once()

	resolved, err := resolver.Resolve(ctx, testKey, day(2025, 6, 1))

	assert.NoError(t, err)
	assert.Equal(t, int64(2), resolved.ID)
}

func TestResolver_Resolve_RejectsInvertedClamp(t *testing.T) {
	repo := &MockPolicyRepository{}
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	min := int64(50000)
	max := int64(20000)
	policies := []domain.FeePolicy{
		{ID: 9, FeeRateBps: 1000, MinFeeCents: &min, MaxFeeCents: &max, EffectiveFrom: day(2025, 1, 1)},
	}
	repo.On("ListByKey", ctx, "MU", "ECONOMY", domain.ApplicationKindRefund, domain.ChangeKindVoluntary).Return(policies, nil).Once()

	_, err := resolver.Resolve(ctx, testKey, day(2025, 6, 1))

	assert.ErrorIs(t, err, domain.ErrPolicyInvalid)
}

func TestResolver_Resolve_UsesCache(t *testing.T) {
	repo := &MockPolicyRepository{}
	mockCache := &MockCache{}
	resolver := NewResolver(repo, mockCache)
	ctx := context.Background()

	cached := []domain.FeePolicy{
		{ID: 3, FeeRateBps: 800, EffectiveFrom: day(2025, 1, 1)},
	}
	mockCache.On("GetPolicies", ctx, testKey.String()).Return(cached, nil).Once()

	resolved, err := resolver.Resolve(ctx, testKey, day(2025, 6, 1))

	assert.NoError(t, err)
	assert.Equal(t, int64(3), resolved.ID)
	repo.AssertNotCalled(t, "ListByKey")
	mockCache.AssertExpectations(t)
}

func TestResolver_Resolve_FillsCacheOnMiss(t *testing.T) {
	repo := &MockPolicyRepository{}
	mockCache := &MockCache{}
	resolver := NewResolver(repo, mockCache)
	ctx := context.Background()

	policies := []domain.FeePolicy{
		{ID: 4, FeeRateBps: 800, EffectiveFrom: day(2025, 1, 1)},
	}
	mockCache.On("GetPolicies", ctx, testKey.String()).Return(nil, nil).Once()
	repo.On("ListByKey", ctx, "MU", "ECONOMY", domain.ApplicationKindRefund, domain.ChangeKindVoluntary).Return(policies, nil).Once()
	mockCache.On("SetPolicies", ctx, testKey.String(), policies).Return(nil).Once()

	resolved, err := resolver.Resolve(ctx, testKey, day(2025, 6, 1))

	assert.NoError(t, err)
	assert.Equal(t, int64(4), resolved.ID)
	mockCache.AssertExpectations(t)
}

func TestAirlineFromFlightNo(t *testing.T) {
	assert.Equal(t, "MU", AirlineFromFlightNo("mu585"))
	assert.Equal(t, "CA", AirlineFromFlightNo("CA987"))
	assert.Equal(t, "", AirlineFromFlightNo("X"))
}
