package bookings

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/internal/catalog"
	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Item{}, &models.Booking{}))

	items := catalog.NewRepository(db)
	require.NoError(t, items.Create(context.Background(), &models.Item{
		ID: uuid.New(), SKU: "WID-001", Name: "Widget", Unit: enums.QuantityUnitDiscrete,
	}))

	svc, err := NewService(NewRepository(db), items)
	require.NoError(t, err)
	return svc
}

func TestGetWithoutBookingReadsAsZero(t *testing.T) {
	svc := newTestService(t)

	booking, err := svc.Get(context.Background(), "WID-001")
	require.NoError(t, err)
	assert.Equal(t, "WID-001", booking.SKU)
	assert.Equal(t, int64(0), booking.Quantity)
	assert.Empty(t, booking.Note)
}

func TestSetThenGetRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Set(ctx, "WID-001", 12, "trade fair allocation")
	require.NoError(t, err)
	assert.Equal(t, int64(12), saved.Quantity)

	// A second write overwrites, it does not accumulate.
	_, err = svc.Set(ctx, "WID-001", 5, "")
	require.NoError(t, err)

	booking, err := svc.Get(ctx, "WID-001")
	require.NoError(t, err)
	assert.Equal(t, int64(5), booking.Quantity)
	assert.Empty(t, booking.Note)
}

func TestSetValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		sku      string
		quantity int64
		code     pkgerrors.Code
	}{
		{"blank sku", "  ", 1, pkgerrors.CodeValidation},
		{"negative quantity", "WID-001", -1, pkgerrors.CodeValidation},
		{"unknown sku", "GHOST", 1, pkgerrors.CodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Set(ctx, tc.sku, tc.quantity, "")
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			assert.Equal(t, tc.code, coded.Code())
		})
	}
}

func TestGetUnknownSKU(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "GHOST")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}
