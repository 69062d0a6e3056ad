package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/northquay/stocktrail-backend/api/responses"
	"github.com/northquay/stocktrail-backend/internal/backup"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
	"github.com/northquay/stocktrail-backend/pkg/logger"
)

func ExportSnapshot(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := svc.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filename := "stocktrail-" + time.Now().UTC().Format("20060102T150405Z") + ".json"
		responses.WriteJSONFile(w, filename, raw)
	}
}

func RestoreSnapshot(svc backup.Service, maxSnapshotMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := int64(maxSnapshotMB) << 20
		if limit <= 0 {
			limit = 50 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read snapshot"))
			return
		}

		summary, err := svc.Restore(r.Context(), raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{
			"items":         summary.Items,
			"locations":     summary.Locations,
			"stock_levels":  summary.StockLevels,
			"bookings":      summary.Bookings,
			"audit_entries": summary.AuditEntries,
		})
	}
}
