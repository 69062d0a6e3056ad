package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/northquay/stocktrail-backend/api/responses"
	"github.com/northquay/stocktrail-backend/internal/reports"
	"github.com/northquay/stocktrail-backend/pkg/logger"
)

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

func LocationReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseLocationID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Location(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if wantsCSV(r) {
			data, err := reports.LocationReportCSV(report)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteCSV(w, "location-report.csv", data)
			return
		}
		responses.WriteSuccess(w, toLocationReportDTO(report))
	}
}

func ProductReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Product(r.Context(), chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if wantsCSV(r) {
			data, err := reports.ProductReportCSV(report)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteCSV(w, "product-report.csv", data)
			return
		}
		responses.WriteSuccess(w, toProductReportDTO(report))
	}
}
