package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StockLevel{}))
	return db
}

// newSerialTestDB caps the pool at one connection so goroutines interleave
// statement by statement without tripping sqlite's write lock.
func newSerialTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestApplyDeltaCreatesAndAccumulates(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	loc := uuid.New()

	qty, err := repo.ApplyDelta(ctx, "SKU-1", loc, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), qty)

	qty, err = repo.ApplyDelta(ctx, "SKU-1", loc, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(8), qty)

	level, err := repo.Get(ctx, "SKU-1", loc)
	require.NoError(t, err)
	assert.Equal(t, int64(8), level.Quantity)
}

func TestApplyDeltaRejectsOverdraw(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	loc := uuid.New()

	_, err := repo.ApplyDelta(ctx, "SKU-1", loc, 4)
	require.NoError(t, err)

	_, err = repo.ApplyDelta(ctx, "SKU-1", loc, -5)
	require.Error(t, err)

	var coded *pkgerrors.Error
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, pkgerrors.CodeInsufficientStock, coded.Code())

	level, err := repo.Get(ctx, "SKU-1", loc)
	require.NoError(t, err)
	assert.Equal(t, int64(4), level.Quantity, "failed deduction must not change the balance")
}

func TestApplyDeltaMissingRowReportsZeroAvailable(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	_, err := repo.ApplyDelta(context.Background(), "GHOST", uuid.New(), -1)
	require.Error(t, err)

	var coded *pkgerrors.Error
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, pkgerrors.CodeInsufficientStock, coded.Code())
}

func TestApplyDeltaDrainsToZero(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	loc := uuid.New()

	_, err := repo.ApplyDelta(ctx, "SKU-1", loc, 7)
	require.NoError(t, err)

	qty, err := repo.ApplyDelta(ctx, "SKU-1", loc, -7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)
}

func TestApplyDeltaGuardNeverGoesNegative(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	loc := uuid.New()

	const initial = 10
	_, err := repo.ApplyDelta(ctx, "SKU-1", loc, initial)
	require.NoError(t, err)

	successes := 0
	for i := 0; i < initial*2; i++ {
		if _, err := repo.ApplyDelta(ctx, "SKU-1", loc, -1); err == nil {
			successes++
		}
	}
	assert.Equal(t, initial, successes, "exactly the available units may be deducted")

	level, err := repo.Get(ctx, "SKU-1", loc)
	require.NoError(t, err)
	assert.Equal(t, int64(0), level.Quantity)
}

func TestApplyDeltaConcurrentCreditsAllLand(t *testing.T) {
	repo := NewRepository(newSerialTestDB(t))
	ctx := context.Background()
	loc := uuid.New()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := repo.ApplyDelta(ctx, "SKU-1", loc, 1); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent credit failed: %v", err)
	}

	level, err := repo.Get(ctx, "SKU-1", loc)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), level.Quantity, "every concurrent credit must land")
}

func TestSetQuantityNeverLosesConcurrentDeltas(t *testing.T) {
	repo := NewRepository(newSerialTestDB(t))
	ctx := context.Background()
	loc := uuid.New()

	const target = 40
	_, err := repo.ApplyDelta(ctx, "SKU-1", loc, target)
	require.NoError(t, err)

	// Each committed operation contributes an exact delta: +1 per credit,
	// target minus the replaced balance per overwrite. The contributions
	// must sum to the stored balance regardless of interleaving.
	var ledgered int64 = target
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if _, err := repo.ApplyDelta(ctx, "SKU-1", loc, 1); err == nil {
				mu.Lock()
				ledgered++
				mu.Unlock()
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			previous, err := repo.SetQuantity(ctx, "SKU-1", loc, target)
			if err == nil {
				mu.Lock()
				ledgered += target - previous
				mu.Unlock()
			}
		}
	}()
	wg.Wait()

	level, err := repo.Get(ctx, "SKU-1", loc)
	require.NoError(t, err)
	assert.Equal(t, ledgered, level.Quantity, "committed deltas must sum to the stored balance")
}

func TestSetQuantityReturnsPrevious(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	loc := uuid.New()

	previous, err := repo.SetQuantity(ctx, "SKU-1", loc, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(0), previous)

	previous, err = repo.SetQuantity(ctx, "SKU-1", loc, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), previous)

	level, err := repo.Get(ctx, "SKU-1", loc)
	require.NoError(t, err)
	assert.Equal(t, int64(3), level.Quantity)
}

func TestTotalsAndListings(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	locA := uuid.New()
	locB := uuid.New()

	_, err := repo.ApplyDelta(ctx, "SKU-1", locA, 5)
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, "SKU-1", locB, 2)
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, "SKU-2", locA, 9)
	require.NoError(t, err)

	total, err := repo.TotalBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	bySKU, err := repo.LevelsBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Len(t, bySKU, 2)

	byLoc, err := repo.LevelsByLocation(ctx, locA)
	require.NoError(t, err)
	assert.Len(t, byLoc, 2)

	nonZero, err := repo.ListNonZero(ctx)
	require.NoError(t, err)
	assert.Len(t, nonZero, 3)
}

func TestDeleteHelpers(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	locA := uuid.New()
	locB := uuid.New()

	_, err := repo.ApplyDelta(ctx, "SKU-1", locA, 5)
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, "SKU-1", locB, 2)
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, "SKU-2", locA, 9)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteBySKU(ctx, "SKU-1"))
	remaining, err := repo.ListNonZero(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "SKU-2", remaining[0].SKU)

	require.NoError(t, repo.DeleteByLocation(ctx, locA))
	remaining, err = repo.ListNonZero(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestGetMissingRowReturnsZeroLevel(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	loc := uuid.New()

	level, err := repo.Get(context.Background(), "SKU-404", loc)
	require.NoError(t, err)
	assert.Equal(t, int64(0), level.Quantity)
	assert.Equal(t, "SKU-404", level.SKU)
	assert.Equal(t, loc, level.LocationID)
}
