package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/northquay/stocktrail-backend/api/middleware"
	"github.com/northquay/stocktrail-backend/api/responses"
	"github.com/northquay/stocktrail-backend/api/validators"
	"github.com/northquay/stocktrail-backend/internal/ledger"
	"github.com/northquay/stocktrail-backend/internal/movements"
	pkgerrors "github.com/northquay/stocktrail-backend/pkg/errors"
	"github.com/northquay/stocktrail-backend/pkg/logger"
)

type movementRequest struct {
	SKU        string  `json:"sku" validate:"required"`
	LocationID string  `json:"location_id" validate:"required,uuid"`
	Quantity   int64   `json:"quantity" validate:"required"`
	Reason     *string `json:"reason,omitempty"`
	Note       *string `json:"note,omitempty"`
}

type transferRequest struct {
	SKU            string  `json:"sku" validate:"required"`
	FromLocationID string  `json:"from_location_id" validate:"required,uuid"`
	ToLocationID   string  `json:"to_location_id" validate:"required,uuid"`
	Quantity       int64   `json:"quantity" validate:"required"`
	Reason         *string `json:"reason,omitempty"`
	Note           *string `json:"note,omitempty"`
}

type setStockRequest struct {
	SKU        string  `json:"sku" validate:"required"`
	LocationID string  `json:"location_id" validate:"required,uuid"`
	Quantity   *int64  `json:"quantity" validate:"required"`
	Reason     *string `json:"reason,omitempty"`
	Note       *string `json:"note,omitempty"`
}

func actorFromContext(r *http.Request) movements.Actor {
	return movements.Actor{
		ID:   middleware.ActorIDFromContext(r.Context()),
		Name: middleware.ActorNameFromContext(r.Context()),
	}
}

// GetStock reads levels filtered by sku and/or location_id; with neither it
// returns every non-zero level.
func GetStock(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku := strings.TrimSpace(r.URL.Query().Get("sku"))
		locationID, err := validators.ParseQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch {
		case sku != "" && locationID != uuid.Nil:
			level, err := svc.GetLevel(r.Context(), sku, locationID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, toStockLevelDTO(level))
		case sku != "":
			levels, err := svc.LevelsBySKU(r.Context(), sku)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, toStockLevelDTOs(levels))
		case locationID != uuid.Nil:
			levels, err := svc.LevelsByLocation(r.Context(), locationID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, toStockLevelDTOs(levels))
		default:
			levels, err := svc.Overview(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, toStockLevelDTOs(levels))
		}
	}
}

func AddStock(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return applyMovement(svc.Add, logg)
}

func DeductStock(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return applyMovement(svc.Deduct, logg)
}

func applyMovement(apply func(ctx context.Context, input movements.MovementInput) (*movements.MovementResult, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload movementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locationID, err := uuid.Parse(payload.LocationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id"))
			return
		}

		result, err := apply(r.Context(), movements.MovementInput{
			SKU:        payload.SKU,
			LocationID: locationID,
			Quantity:   payload.Quantity,
			Reason:     payload.Reason,
			Note:       payload.Note,
			Actor:      actorFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toMovementResultDTO(result))
	}
}

func SetStock(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locationID, err := uuid.Parse(payload.LocationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location id"))
			return
		}

		result, err := svc.Set(r.Context(), movements.SetInput{
			SKU:        payload.SKU,
			LocationID: locationID,
			Quantity:   *payload.Quantity,
			Reason:     payload.Reason,
			Note:       payload.Note,
			Actor:      actorFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toMovementResultDTO(result))
	}
}

func TransferStock(svc movements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload transferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		from, err := uuid.Parse(payload.FromLocationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source location id"))
			return
		}
		to, err := uuid.Parse(payload.ToLocationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid destination location id"))
			return
		}

		result, err := svc.Transfer(r.Context(), movements.TransferInput{
			SKU:            payload.SKU,
			FromLocationID: from,
			ToLocationID:   to,
			Quantity:       payload.Quantity,
			Reason:         payload.Reason,
			Note:           payload.Note,
			Actor:          actorFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toTransferResultDTO(result))
	}
}
