package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus_CanTransition(t *testing.T) {
	testCases := []struct {
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{ApplicationStatusPending, ApplicationStatusApproved, true},
		{ApplicationStatusPending, ApplicationStatusRejected, true},
		{ApplicationStatusPending, ApplicationStatusCancelled, true},
		{ApplicationStatusPending, ApplicationStatusCompleted, false},
		{ApplicationStatusApproved, ApplicationStatusCompleted, true},
		{ApplicationStatusApproved, ApplicationStatusCancelled, false},
		{ApplicationStatusApproved, ApplicationStatusRejected, false},
		{ApplicationStatusRejected, ApplicationStatusCompleted, false},
		{ApplicationStatusCompleted, ApplicationStatusCancelled, false},
		{ApplicationStatusCancelled, ApplicationStatusApproved, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApplicationStatus_Terminal(t *testing.T) {
	assert.False(t, ApplicationStatusPending.Terminal())
	assert.False(t, ApplicationStatusApproved.Terminal())
	assert.True(t, ApplicationStatusRejected.Terminal())
	assert.True(t, ApplicationStatusCompleted.Terminal())
	assert.True(t, ApplicationStatusCancelled.Terminal())
}

func TestApplicationStatus_Open(t *testing.T) {
	assert.True(t, ApplicationStatusPending.Open())
	assert.True(t, ApplicationStatusApproved.Open())
	assert.False(t, ApplicationStatusRejected.Open())
	assert.False(t, ApplicationStatusCompleted.Open())
	assert.False(t, ApplicationStatusCancelled.Open())
}

func TestApplyRateBps(t *testing.T) {
	assert.Equal(t, int64(10000), ApplyRateBps(100000, 1000))
	assert.Equal(t, int64(5), ApplyRateBps(150, 333))
	assert.Equal(t, int64(3), ApplyRateBps(100, 333))
	assert.Equal(t, int64(0), ApplyRateBps(0, 1000))
}
