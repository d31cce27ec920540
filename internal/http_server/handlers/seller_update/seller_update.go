package sellerUpdate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"user_service/internal/auth"
	"user_service/internal/http_server/handlers"
	resp "user_service/internal/lib/api/response"
	sl "user_service/internal/lib/logger"
	"user_service/internal/middleware/authn"
	"user_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	SellerName string `json:"sellerName" validate:"required,max=100"`
}

type Payload struct {
	SellerID  string    `json:"sellerId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SellerNameUpdater interface {
	UpdateSellerName(ctx context.Context, claims models.Claims, sellerName string) (time.Time, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	updater SellerNameUpdater,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sellerUpdate.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		claims, ok := authn.ClaimsFromContext(r.Context())
		if !ok {
			handlers.RespondError(w, r, log, auth.ErrMissingBearer)

			return
		}

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		updatedAt, err := updater.UpdateSellerName(ctx, claims, req.SellerName)
		if err != nil {
			handlers.RespondError(w, r, log, err)

			return
		}

		log.Info("Seller updated", slog.String("sid", claims.UserID))

		render.JSON(w, r, resp.WithPayload(Payload{
			SellerID:  claims.UserID,
			UpdatedAt: updatedAt,
		}))
	}
}
