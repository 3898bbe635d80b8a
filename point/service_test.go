package point_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimdoha/point-system/point"
	"github.com/kimdoha/point-system/point/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService() (*point.Service, *store.PointHistoryTable) {
	histories := store.NewPointHistoryTable()
	return point.NewService(store.NewUserPointTable(), histories), histories
}

func sumAmounts(histories []point.PointHistory) int64 {
	var sum int64
	for _, h := range histories {
		sum += h.Amount
	}
	return sum
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

func TestGetPoint_UnknownUser_ImplicitZero(t *testing.T) {
	// GIVEN: A user that has never transacted
	// WHEN: Reading their balance
	// THEN: An implicit zero-balance record is returned, nothing is created

	svc, _ := newTestService()
	ctx := context.Background()

	record, err := svc.GetPoint(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), record.ID)
	assert.Equal(t, int64(0), record.Point)
	assert.Positive(t, record.UpdateMillis)

	// Repeatable with identical balance
	again, err := svc.GetPoint(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, record.Point, again.Point)
}

func TestGetPoint_InvalidUserID_Rejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, id := range []int64{0, -1, -100} {
		_, err := svc.GetPoint(ctx, id)
		assert.ErrorIs(t, err, point.ErrInvalidUserID, "id %d should be rejected", id)
	}
}

func TestGetHistories_InvalidUserID_Rejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetHistories(context.Background(), 0)
	assert.ErrorIs(t, err, point.ErrInvalidUserID)
}

func TestGetHistories_EmptyForFreshUser(t *testing.T) {
	svc, _ := newTestService()

	histories, err := svc.GetHistories(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, histories)
}

func TestGetHistories_SortedByTimeThenID(t *testing.T) {
	// GIVEN: History rows with identical timestamps
	// WHEN: Reading histories
	// THEN: Ties are broken by history id, ascending

	svc, histories := newTestService()
	ctx := context.Background()

	// Insert directly so all rows share one timestamp
	_, err := histories.Insert(ctx, 1, 100, point.TxCharge, 5000)
	require.NoError(t, err)
	_, err = histories.Insert(ctx, 1, -50, point.TxUse, 5000)
	require.NoError(t, err)
	_, err = histories.Insert(ctx, 1, 25, point.TxCharge, 4000)
	require.NoError(t, err)

	got, err := svc.GetHistories(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(4000), got[0].TimeMillis)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(2), got[2].ID)
}

// =============================================================================
// CHARGE
// =============================================================================

func TestCharge_FreshUser(t *testing.T) {
	// GIVEN: A fresh user
	// WHEN: Charging 5000 points
	// THEN: Balance is 5000 and one CHARGE history row exists

	svc, _ := newTestService()
	ctx := context.Background()

	updated, err := svc.Charge(ctx, 1, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, int64(5000), updated.Point)

	histories, err := svc.GetHistories(ctx, 1)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Equal(t, point.TxCharge, histories[0].Type)
	assert.Equal(t, int64(5000), histories[0].Amount)
	assert.Equal(t, updated.UpdateMillis, histories[0].TimeMillis,
		"history row and balance record share one timestamp")
}

func TestCharge_InvalidAmount_Rejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, amount := range []int64{0, -1, -5000} {
		_, err := svc.Charge(ctx, 1, amount)
		assert.ErrorIs(t, err, point.ErrInvalidChargeAmount, "amount %d should be rejected", amount)
	}
}

func TestCharge_InvalidUserID_Rejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Charge(context.Background(), -1, 100)
	assert.ErrorIs(t, err, point.ErrInvalidUserID)
}

func TestCharge_ToExactlyMaxPoint_Succeeds(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	updated, err := svc.Charge(ctx, 2, point.MaxPoint)
	require.NoError(t, err)
	assert.Equal(t, point.MaxPoint, updated.Point)
}

func TestCharge_OneBeyondMaxPoint_Fails(t *testing.T) {
	// GIVEN: A user at the balance cap
	// WHEN: Charging one more point
	// THEN: The charge fails and nothing is written

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Charge(ctx, 2, point.MaxPoint)
	require.NoError(t, err)

	_, err = svc.Charge(ctx, 2, 1)
	assert.ErrorIs(t, err, point.ErrMaxPointExceeded)

	var maxErr *point.MaxPointExceededError
	require.ErrorAs(t, err, &maxErr)
	assert.Equal(t, point.MaxPoint, maxErr.Balance)
	assert.Equal(t, int64(1), maxErr.Requested)

	// Failed charge is a no-op
	record, err := svc.GetPoint(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, point.MaxPoint, record.Point)

	histories, err := svc.GetHistories(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, histories, 1)
}

func TestCharge_HugeAmount_FailsWithoutOverflow(t *testing.T) {
	// GIVEN: A user holding 1000 points
	// WHEN: Charging math.MaxInt64 points
	// THEN: The charge is rejected; the balance never goes negative and
	//       no history row is written

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Charge(ctx, 8, 1000)
	require.NoError(t, err)

	_, err = svc.Charge(ctx, 8, math.MaxInt64)
	assert.ErrorIs(t, err, point.ErrMaxPointExceeded)

	record, err := svc.GetPoint(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), record.Point)
	assert.GreaterOrEqual(t, record.Point, int64(0), "balance must never go negative")

	histories, err := svc.GetHistories(ctx, 8)
	require.NoError(t, err)
	assert.Len(t, histories, 1)
}

// =============================================================================
// USE
// =============================================================================

func TestUse_ExactBalance_LeavesZero(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Charge(ctx, 3, 1000)
	require.NoError(t, err)

	updated, err := svc.Use(ctx, 3, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Point)
}

func TestUse_OneBeyondBalance_Fails(t *testing.T) {
	// GIVEN: A user holding 1000 points
	// WHEN: Using 1001 points
	// THEN: The use fails and the balance and history are untouched

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Charge(ctx, 3, 1000)
	require.NoError(t, err)

	before, err := svc.GetPoint(ctx, 3)
	require.NoError(t, err)

	_, err = svc.Use(ctx, 3, 1001)
	assert.ErrorIs(t, err, point.ErrInsufficientPoint)

	var insufErr *point.InsufficientPointError
	require.ErrorAs(t, err, &insufErr)
	assert.Equal(t, int64(1000), insufErr.Balance)
	assert.Equal(t, int64(1001), insufErr.Requested)

	after, err := svc.GetPoint(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed use must be a no-op")

	histories, err := svc.GetHistories(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, histories, 1)
}

func TestUse_InvalidAmount_Rejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, amount := range []int64{0, -1} {
		_, err := svc.Use(ctx, 3, amount)
		assert.ErrorIs(t, err, point.ErrInvalidUseAmount, "amount %d should be rejected", amount)
	}
}

func TestUse_FreshUser_Insufficient(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Use(context.Background(), 9, 1)
	assert.ErrorIs(t, err, point.ErrInsufficientPoint)
}

// =============================================================================
// INVARIANTS
// =============================================================================

func TestChargeAndUse_HistorySumEqualsBalance(t *testing.T) {
	// GIVEN: A mixed sequence of valid charges and uses
	// WHEN: Reading the balance and histories afterwards
	// THEN: The sum of history amounts equals the balance, and the
	//       balance stayed in [0, MaxPoint] throughout

	svc, _ := newTestService()
	ctx := context.Background()

	ops := []struct {
		charge bool
		amount int64
	}{
		{true, 5000}, {false, 1000}, {true, 200}, {false, 4200}, {true, 1},
	}

	var expected int64
	for _, op := range ops {
		var (
			updated point.UserPoint
			err     error
		)
		if op.charge {
			updated, err = svc.Charge(ctx, 5, op.amount)
			expected += op.amount
		} else {
			updated, err = svc.Use(ctx, 5, op.amount)
			expected -= op.amount
		}
		require.NoError(t, err)
		assert.Equal(t, expected, updated.Point)
		assert.GreaterOrEqual(t, updated.Point, int64(0))
		assert.LessOrEqual(t, updated.Point, point.MaxPoint)
	}

	record, err := svc.GetPoint(ctx, 5)
	require.NoError(t, err)

	histories, err := svc.GetHistories(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, histories, len(ops))
	assert.Equal(t, record.Point, sumAmounts(histories))

	for i := 1; i < len(histories); i++ {
		assert.GreaterOrEqual(t, histories[i].TimeMillis, histories[i-1].TimeMillis,
			"histories must be non-decreasing in time")
	}
}

func TestConcurrentCharges_AllApplied(t *testing.T) {
	// GIVEN: 100 concurrent charges of 10 points for one user
	// WHEN: They all complete
	// THEN: The balance is exactly 1000 and 100 history rows sum to it

	svc, _ := newTestService()
	ctx := context.Background()

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Charge(ctx, 4, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	record, err := svc.GetPoint(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), record.Point)

	histories, err := svc.GetHistories(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, histories, workers)
	assert.Equal(t, int64(1000), sumAmounts(histories))
}

func TestConcurrentChargesAndUses_Serializable(t *testing.T) {
	// GIVEN: A user holding 500 points, 50 concurrent charges of 10 and
	//        50 concurrent uses of 10
	// WHEN: Everything completes
	// THEN: Every request committed (total debit never exceeds the floor
	//       the initial balance provides) and the final balance is 500

	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Charge(ctx, 6, 500)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(100)
	for i := 0; i < 50; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Charge(ctx, 6, 10)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Use(ctx, 6, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	record, err := svc.GetPoint(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(500), record.Point)

	histories, err := svc.GetHistories(ctx, 6)
	require.NoError(t, err)
	assert.Len(t, histories, 101)
	assert.Equal(t, record.Point, sumAmounts(histories))
}

func TestConcurrentUsers_Independent(t *testing.T) {
	// Charges for distinct users run in parallel without affecting
	// each other's balances.

	svc, _ := newTestService()
	ctx := context.Background()

	const users = 20
	var wg sync.WaitGroup
	wg.Add(users)
	for u := int64(1); u <= users; u++ {
		go func(userID int64) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := svc.Charge(ctx, userID, userID)
				assert.NoError(t, err)
			}
		}(u)
	}
	wg.Wait()

	for u := int64(1); u <= users; u++ {
		record, err := svc.GetPoint(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, u*10, record.Point)
	}
}
