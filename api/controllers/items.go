package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/northquay/stocktrail-backend/api/responses"
	"github.com/northquay/stocktrail-backend/api/validators"
	"github.com/northquay/stocktrail-backend/internal/catalog"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
	"github.com/northquay/stocktrail-backend/pkg/logger"
)

type createItemRequest struct {
	SKU        string `json:"sku" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=255"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	CostCents  *int64 `json:"cost_cents,omitempty" validate:"omitempty,gte=0"`
	Unit       string `json:"unit,omitempty"`
}

type updateItemRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	PriceCents *int64  `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	CostCents  *int64  `json:"cost_cents,omitempty" validate:"omitempty,gte=0"`
	Unit       *string `json:"unit,omitempty"`
}

func ListItems(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toItemDTOs(items))
	}
}

func GetItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.GetBySKU(r.Context(), chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toItemDTO(item))
	}
}

func CreateItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), catalog.CreateItemInput{
			SKU:        payload.SKU,
			Name:       payload.Name,
			PriceCents: payload.PriceCents,
			CostCents:  payload.CostCents,
			Unit:       payload.Unit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toItemDTO(item))
	}
}

func UpdateItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), chi.URLParam(r, "sku"), catalog.UpdateItemInput{
			Name:       payload.Name,
			PriceCents: payload.PriceCents,
			CostCents:  payload.CostCents,
			Unit:       payload.Unit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toItemDTO(item))
	}
}

func DeleteItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "sku")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ImportItemsCSV accepts the CSV body either raw or as a multipart "file" part.
func ImportItemsCSV(svc catalog.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := int64(maxUploadMB) << 20
		if limit <= 0 {
			limit = 10 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)

		reader := r.Body
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			file, _, err := r.FormFile("file")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "csv file part required"))
				return
			}
			defer file.Close()
			reader = file
		}

		result, err := svc.ImportCSV(r.Context(), reader)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ItemsCSVTemplate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteCSV(w, "items.csv", []byte(catalog.CSVTemplate()))
	}
}

func ItemsXLSXTemplate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := catalog.XLSXTemplate()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteXLSX(w, "items.xlsx", data)
	}
}
