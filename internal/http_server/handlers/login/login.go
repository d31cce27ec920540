package login

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"user_service/internal/http_server/handlers"
	resp "user_service/internal/lib/api/response"
	sl "user_service/internal/lib/logger"
	"user_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email    string `json:"email" validate:"required,mailaddr"`
	Password string `json:"password" validate:"required,max=72"`
	UserType string `json:"userType" validate:"required,oneof=user seller"`
}

type LoginProvider interface {
	Login(ctx context.Context, email, password, userType string) (models.TokenPair, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	loginProvider LoginProvider,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

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

		pair, err := loginProvider.Login(ctx, req.Email, req.Password, req.UserType)
		if err != nil {
			handlers.RespondError(w, r, log, err)

			return
		}

		log.Info("User logged in", slog.String("user_type", req.UserType))

		render.JSON(w, r, resp.WithPayload(pair))
	}
}
