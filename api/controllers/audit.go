package controllers

import (
	"net/http"
	"strings"

	"github.com/northquay/stocktrail-backend/api/responses"
	"github.com/northquay/stocktrail-backend/api/validators"
	"github.com/northquay/stocktrail-backend/internal/audit"
	"github.com/northquay/stocktrail-backend/pkg/logger"
	"github.com/northquay/stocktrail-backend/pkg/pagination"
)

type auditPageDTO struct {
	Entries    []auditEntryDTO `json:"entries"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// QueryAudit serves the newest-first, cursor-paginated trail. All filters are
// optional and combine as a conjunction.
func QueryAudit(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, err := validators.ParseQueryTime(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryTime(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Query(r.Context(), audit.QueryInput{
			SKU:        strings.TrimSpace(r.URL.Query().Get("sku")),
			Kind:       strings.TrimSpace(r.URL.Query().Get("kind")),
			LocationID: strings.TrimSpace(r.URL.Query().Get("location_id")),
			Start:      start,
			End:        end,
			Limit:      limit,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, auditPageDTO{
			Entries:    toAuditEntryDTOs(result.Entries),
			NextCursor: result.NextCursor,
		})
	}
}
