package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
	"github.com/northquay/stocktrail-backend/pkg/pagination"
)

type fakeRepository struct {
	createFn func(ctx context.Context, entry *models.AuditEntry) error
	listFn   func(ctx context.Context, params ListParams) ([]models.AuditEntry, *pagination.Cursor, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params ListParams) ([]models.AuditEntry, *pagination.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

func validAppendInput() AppendInput {
	return AppendInput{
		Kind:      enums.MovementKindAdd,
		SKU:       "SKU-1",
		ItemName:  "Widget",
		Quantity:  3,
		ActorID:   "actor-1",
		ActorName: "Dana Keller",
	}
}

func TestAppendCreatesEntry(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	var created *models.AuditEntry
	repo.createFn = func(ctx context.Context, entry *models.AuditEntry) error {
		created = entry
		return nil
	}

	got, err := svc.Append(context.Background(), validAppendInput())
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if created == nil {
		t.Fatal("expected entry to be created")
	}
	if created.SKU != "SKU-1" || created.Quantity != 3 || created.Kind != enums.MovementKindAdd {
		t.Fatalf("unexpected entry data: %+v", created)
	}
	if got != created {
		t.Fatal("service should return created entry")
	}
}

func TestAppendValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AppendInput)
	}{
		{"invalid kind", func(in *AppendInput) { in.Kind = "adjust" }},
		{"blank sku", func(in *AppendInput) { in.SKU = "  " }},
		{"zero quantity", func(in *AppendInput) { in.Quantity = 0 }},
		{"negative quantity", func(in *AppendInput) { in.Quantity = -4 }},
		{"missing actor", func(in *AppendInput) { in.ActorID = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validAppendInput()
			tc.mutate(&input)
			_, err := svc.Append(context.Background(), input)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAppendRepoErrorBubbles(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	expected := errors.New("boom")
	repo.createFn = func(ctx context.Context, entry *models.AuditEntry) error {
		return expected
	}

	if _, err := svc.Append(context.Background(), validAppendInput()); !errors.Is(err, expected) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}

func TestQueryParsesFiltersAndCursor(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	cursorAt := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: cursorAt, ID: 10})

	var seen ListParams
	repo.listFn = func(ctx context.Context, params ListParams) ([]models.AuditEntry, *pagination.Cursor, error) {
		seen = params
		return []models.AuditEntry{{ID: 9}}, &pagination.Cursor{CreatedAt: cursorAt, ID: 9}, nil
	}

	result, err := svc.Query(context.Background(), QueryInput{
		SKU:    "SKU-1",
		Kind:   "deduct",
		Limit:  5,
		Cursor: encoded,
	})
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if seen.SKU != "SKU-1" || seen.Kind != enums.MovementKindDeduct || seen.Limit != 5 {
		t.Fatalf("unexpected list params: %+v", seen)
	}
	if seen.Cursor == nil || seen.Cursor.ID != 10 {
		t.Fatalf("cursor not parsed: %+v", seen.Cursor)
	}
	if result.NextCursor == "" {
		t.Fatal("expected next cursor to be encoded")
	}
}

func TestQueryValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	if _, err := svc.Query(context.Background(), QueryInput{Kind: "sideways"}); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for bad kind")
	}
	if _, err := svc.Query(context.Background(), QueryInput{Cursor: "!!"}); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for bad cursor")
	}
	start := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	if _, err := svc.Query(context.Background(), QueryInput{Start: start, End: start.Add(-time.Hour)}); pkgerrors.As(err) == nil {
		t.Fatal("expected validation error for inverted window")
	}
}
