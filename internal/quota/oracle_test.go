package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/apperrors"
)

type sentCounterMock struct {
	mock.Mock
}

func (m *sentCounterMock) CountSentToday(ctx context.Context, senderID, recipientID int) (int, error) {
	args := m.Called(ctx, senderID, recipientID)
	return args.Int(0), args.Error(1)
}

func TestDayKeyUsesUTCDate(t *testing.T) {
	now := time.Date(2025, 3, 9, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	// 23:30 CET is 22:30 UTC, still the 9th.
	assert.Equal(t, "quota:1:2:2025-03-09", dayKey(1, 2, now))

	later := now.Add(2 * time.Hour)
	assert.Equal(t, "quota:1:2:2025-03-10", dayKey(1, 2, later))
}

func TestNextUTCMidnight(t *testing.T) {
	now := time.Date(2025, 3, 9, 22, 30, 0, 0, time.UTC)
	midnight := nextUTCMidnight(now)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), midnight)
}

func TestRemainingFallback(t *testing.T) {
	counter := new(sentCounterMock)
	oracle := NewRedisOracle(nil, counter, 5)

	counter.On("CountSentToday", mock.Anything, 1, 2).Return(3, nil).Once()

	remaining, err := oracle.Remaining(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
	counter.AssertExpectations(t)
}

func TestRemainingFallbackClampsAtZero(t *testing.T) {
	counter := new(sentCounterMock)
	oracle := NewRedisOracle(nil, counter, 5)

	counter.On("CountSentToday", mock.Anything, 1, 2).Return(9, nil).Once()

	remaining, err := oracle.Remaining(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestRemainingFallbackError(t *testing.T) {
	counter := new(sentCounterMock)
	oracle := NewRedisOracle(nil, counter, 5)

	counter.On("CountSentToday", mock.Anything, 1, 2).Return(0, assert.AnError).Once()

	_, err := oracle.Remaining(context.Background(), 1, 2)
	require.Error(t, err)
}

func TestConsumeFallback(t *testing.T) {
	counter := new(sentCounterMock)
	oracle := NewRedisOracle(nil, counter, 2)

	counter.On("CountSentToday", mock.Anything, 1, 2).Return(1, nil).Once()

	remaining, claim, err := oracle.Consume(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	// The fallback never touched Redis, so a later refund must not
	// decrement anything there.
	assert.False(t, claim.viaRedis)
}

func TestConsumeFallbackExhausted(t *testing.T) {
	counter := new(sentCounterMock)
	oracle := NewRedisOracle(nil, counter, 2)

	counter.On("CountSentToday", mock.Anything, 1, 2).Return(2, nil).Once()

	_, _, err := oracle.Consume(context.Background(), 1, 2)
	require.ErrorIs(t, err, apperrors.ErrRateLimited)
}

func TestRefundFallbackClaimIsNoop(t *testing.T) {
	counter := new(sentCounterMock)
	oracle := NewRedisOracle(nil, counter, 2)

	counter.On("CountSentToday", mock.Anything, 1, 2).Return(0, nil).Once()

	_, claim, err := oracle.Consume(context.Background(), 1, 2)
	require.NoError(t, err)
	oracle.Refund(context.Background(), claim)
}

func TestRefundZeroClaimIsNoop(t *testing.T) {
	oracle := NewRedisOracle(nil, new(sentCounterMock), 2)
	oracle.Refund(context.Background(), Claim{})
}
