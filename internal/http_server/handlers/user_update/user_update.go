package userUpdate

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
	Nickname string `json:"nickname" validate:"required,max=50"`
}

type Payload struct {
	UserID    string    `json:"userId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NicknameUpdater interface {
	UpdateNickname(ctx context.Context, claims models.Claims, nickname string) (time.Time, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	updater NicknameUpdater,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.userUpdate.New"

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

		updatedAt, err := updater.UpdateNickname(ctx, claims, req.Nickname)
		if err != nil {
			handlers.RespondError(w, r, log, err)

			return
		}

		log.Info("User updated", slog.String("uid", claims.UserID))

		render.JSON(w, r, resp.WithPayload(Payload{
			UserID:    claims.UserID,
			UpdatedAt: updatedAt,
		}))
	}
}
