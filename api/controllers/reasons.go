package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/northquay/stocktrail-backend/api/responses"
	"github.com/northquay/stocktrail-backend/api/validators"
	"github.com/northquay/stocktrail-backend/internal/reasons"
	"github.com/northquay/stocktrail-backend/pkg/logger"
)

type createReasonRequest struct {
	Code  string `json:"code" validate:"required,max=64"`
	Label string `json:"label" validate:"required,max=255"`
}

func ListReasons(svc reasons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toReasonDTOs(all))
	}
}

func CreateReason(svc reasons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createReasonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := svc.Add(r.Context(), payload.Code, payload.Label)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reasonDTO{
			Code: reason.Code, Label: reason.Label, Seeded: reason.Seeded,
		})
	}
}

func DeleteReason(svc reasons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Remove(r.Context(), chi.URLParam(r, "code")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
