package verifyCode

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"user_service/internal/http_server/handlers"
	resp "user_service/internal/lib/api/response"
	sl "user_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email            string `json:"email" validate:"required,mailaddr"`
	VerificationCode string `json:"verificationCode" validate:"required,numeric,min=6,max=10"`
}

type CodeVerifier interface {
	VerifyCode(ctx context.Context, email, code string) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	verifier CodeVerifier,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verifyCode.New"

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

		if err := verifier.VerifyCode(ctx, req.Email, req.VerificationCode); err != nil {
			handlers.RespondError(w, r, log, err)

			return
		}

		log.Info("Email verified")

		render.JSON(w, r, resp.OK())
	}
}
