package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/northquay/stocktrail-backend/api/responses"
	"github.com/northquay/stocktrail-backend/api/validators"
	"github.com/northquay/stocktrail-backend/internal/bookings"
	"github.com/northquay/stocktrail-backend/pkg/logger"
)

type setBookingRequest struct {
	Quantity *int64 `json:"quantity" validate:"required,gte=0"`
	Note     string `json:"note,omitempty" validate:"max=1024"`
}

func GetBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		booking, err := svc.Get(r.Context(), chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBookingDTO(booking))
	}
}

func SetBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setBookingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		booking, err := svc.Set(r.Context(), chi.URLParam(r, "sku"), *payload.Quantity, payload.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toBookingDTO(booking))
	}
}
