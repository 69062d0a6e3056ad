package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/northquay/stocktrail-backend/internal/audit"
	"github.com/northquay/stocktrail-backend/internal/backup"
	"github.com/northquay/stocktrail-backend/internal/catalog"
	"github.com/northquay/stocktrail-backend/internal/movements"
	"github.com/northquay/stocktrail-backend/internal/reports"
	pkgAuth "github.com/northquay/stocktrail-backend/pkg/auth"
	"github.com/northquay/stocktrail-backend/pkg/config"
	"github.com/northquay/stocktrail-backend/pkg/db/models"
	"github.com/northquay/stocktrail-backend/pkg/enums"
	"github.com/northquay/stocktrail-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct{}

func (stubCatalogService) Create(ctx context.Context, input catalog.CreateItemInput) (*models.Item, error) {
	return &models.Item{SKU: input.SKU, Name: input.Name}, nil
}

func (stubCatalogService) GetBySKU(ctx context.Context, sku string) (*models.Item, error) {
	return &models.Item{SKU: sku}, nil
}

func (stubCatalogService) List(ctx context.Context) ([]models.Item, error) {
	return nil, nil
}

func (stubCatalogService) Update(ctx context.Context, sku string, input catalog.UpdateItemInput) (*models.Item, error) {
	return &models.Item{SKU: sku}, nil
}

func (stubCatalogService) Delete(ctx context.Context, sku string) error {
	return nil
}

func (stubCatalogService) ImportCSV(ctx context.Context, r io.Reader) (*catalog.ImportResult, error) {
	return &catalog.ImportResult{}, nil
}

type stubLocationsService struct{}

func (stubLocationsService) Create(ctx context.Context, name string) (*models.Location, error) {
	return &models.Location{ID: uuid.New(), Name: name}, nil
}

func (stubLocationsService) Get(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	return &models.Location{ID: id}, nil
}

func (stubLocationsService) List(ctx context.Context) ([]models.Location, error) {
	return nil, nil
}

func (stubLocationsService) Rename(ctx context.Context, id uuid.UUID, name string) (*models.Location, error) {
	return &models.Location{ID: id, Name: name}, nil
}

func (stubLocationsService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubLedgerService struct{}

func (stubLedgerService) GetLevel(ctx context.Context, sku string, locationID uuid.UUID) (*models.StockLevel, error) {
	return &models.StockLevel{SKU: sku, LocationID: locationID}, nil
}

func (stubLedgerService) LevelsBySKU(ctx context.Context, sku string) ([]models.StockLevel, error) {
	return nil, nil
}

func (stubLedgerService) LevelsByLocation(ctx context.Context, locationID uuid.UUID) ([]models.StockLevel, error) {
	return nil, nil
}

func (stubLedgerService) TotalBySKU(ctx context.Context, sku string) (int64, error) {
	return 0, nil
}

func (stubLedgerService) Overview(ctx context.Context) ([]models.StockLevel, error) {
	return nil, nil
}

type stubMovementsService struct {
	adds int
}

func (s *stubMovementsService) Add(ctx context.Context, input movements.MovementInput) (*movements.MovementResult, error) {
	s.adds++
	return &movements.MovementResult{Quantity: input.Quantity}, nil
}

func (s *stubMovementsService) Deduct(ctx context.Context, input movements.MovementInput) (*movements.MovementResult, error) {
	return &movements.MovementResult{}, nil
}

func (s *stubMovementsService) Set(ctx context.Context, input movements.SetInput) (*movements.MovementResult, error) {
	return &movements.MovementResult{}, nil
}

func (s *stubMovementsService) Transfer(ctx context.Context, input movements.TransferInput) (*movements.TransferResult, error) {
	return &movements.TransferResult{}, nil
}

type stubAuditService struct{}

func (stubAuditService) Append(ctx context.Context, input audit.AppendInput) (*models.AuditEntry, error) {
	return &models.AuditEntry{}, nil
}

func (stubAuditService) Query(ctx context.Context, input audit.QueryInput) (*audit.QueryResult, error) {
	return &audit.QueryResult{}, nil
}

type stubReportsService struct{}

func (stubReportsService) Location(ctx context.Context, locationID uuid.UUID) (*reports.LocationReport, error) {
	return &reports.LocationReport{Location: models.Location{ID: locationID}}, nil
}

func (stubReportsService) Product(ctx context.Context, sku string) (*reports.ProductReport, error) {
	return &reports.ProductReport{Item: models.Item{SKU: sku}}, nil
}

type stubReasonsService struct{}

func (stubReasonsService) List(ctx context.Context) ([]models.Reason, error) {
	return nil, nil
}

func (stubReasonsService) Add(ctx context.Context, code, label string) (*models.Reason, error) {
	return &models.Reason{Code: code, Label: label}, nil
}

func (stubReasonsService) Remove(ctx context.Context, code string) error {
	return nil
}

type stubBookingsService struct{}

func (stubBookingsService) Get(ctx context.Context, sku string) (*models.Booking, error) {
	return &models.Booking{SKU: sku}, nil
}

func (stubBookingsService) Set(ctx context.Context, sku string, quantity int64, note string) (*models.Booking, error) {
	return &models.Booking{SKU: sku, Quantity: quantity, Note: note}, nil
}

type stubBackupService struct{}

func (stubBackupService) Export(ctx context.Context) ([]byte, error) {
	return []byte(`{"version":1}`), nil
}

func (stubBackupService) Restore(ctx context.Context, raw []byte) (*backup.RestoreSummary, error) {
	return &backup.RestoreSummary{}, nil
}

type recordingStore struct {
	records map[string]string
}

func (s *recordingStore) Get(ctx context.Context, key string) (string, error) {
	return s.records[key], nil
}

func (s *recordingStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.records == nil {
		s.records = map[string]string{}
	}
	if _, ok := s.records[key]; ok {
		return false, nil
	}
	s.records[key] = value.(string)
	return true, nil
}

func (s *recordingStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (s *recordingStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.records, key)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		HTTP: config.HTTPConfig{
			RequestTimeout: 5 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "stocktrail-test",
			ExpirationMinutes: 60,
		},
		Import: config.ImportConfig{MaxUploadMB: 1, SnapshotMaxMB: 1},
	}
}

func newTestRouter(cfg *config.Config, moves movements.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	if moves == nil {
		moves = &stubMovementsService{}
	}
	return NewRouter(Deps{
		Config:  cfg,
		Logger:  logg,
		DB:      stubPinger{},
		Redis:   stubPinger{},
		Idem:    &recordingStore{},
		Items:   stubCatalogService{},
		Places:  stubLocationsService{},
		Stock:   stubLedgerService{},
		Moves:   moves,
		Trail:   stubAuditService{},
		Reports: stubReportsService{},
		Reasons: stubReasonsService{},
		Booked:  stubBookingsService{},
		Backup:  stubBackupService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		ActorID:   uuid.New(),
		ActorName: "Dana Keller",
		Role:      role,
		JTI:       uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := newTestRouter(testConfig(), nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestAPIRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestViewerCanReadButNotMutate(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)
	token := buildToken(t, cfg, enums.ActorRoleViewer)

	read := httptest.NewRequest(http.MethodGet, "/api/v1/stock", nil)
	read.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, read)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for viewer read got %d", resp.Code)
	}

	write := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(`{"sku":"WID-001","name":"Widget"}`))
	write.Header.Set("Authorization", "Bearer "+token)
	write.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, write)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer mutation got %d", resp.Code)
	}
}

func TestSnapshotEndpointsRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	editor := httptest.NewRequest(http.MethodGet, "/api/v1/export", nil)
	editor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleEditor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, editor)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for editor export got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/export", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin export got %d", resp.Code)
	}
}

func TestMovementEndpointsRequireIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	body := `{"sku":"WID-001","location_id":"` + uuid.NewString() + `","quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/add", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleEditor))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key got %d", resp.Code)
	}
}

func TestMovementRetryIsReplayedNotReapplied(t *testing.T) {
	cfg := testConfig()
	moves := &stubMovementsService{}
	router := newTestRouter(cfg, moves)
	token := buildToken(t, cfg, enums.ActorRoleEditor)

	body := `{"sku":"WID-001","location_id":"` + uuid.NewString() + `","quantity":5}`
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/add", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "retry-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	first := send()
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200 for first movement got %d: %s", first.Code, first.Body.String())
	}
	second := send()
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200 for replay got %d", second.Code)
	}
	if moves.adds != 1 {
		t.Fatalf("expected movement applied once got %d", moves.adds)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected replayed body to match original")
	}
}

func TestValidationFailureReturns400(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleEditor))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed payload got %d", resp.Code)
	}
}
