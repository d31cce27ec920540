package userJoin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"user_service/internal/auth"
	"user_service/internal/http_server/handlers"
	resp "user_service/internal/lib/api/response"
	sl "user_service/internal/lib/logger"
	"user_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const birthdateLayout = "2006-01-02"

type Request struct {
	Email     string `json:"email" validate:"required,mailaddr"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Nickname  string `json:"nickname" validate:"required,max=50"`
	Birthdate string `json:"birthdate" validate:"required,datetime=2006-01-02"`
}

type Payload struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserRegistrar interface {
	RegisterUser(ctx context.Context, in auth.RegisterUserInput) (models.User, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	registrar UserRegistrar,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.userJoin.New"

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

		// already checked by the datetime tag
		birthdate, _ := time.Parse(birthdateLayout, req.Birthdate)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := registrar.RegisterUser(ctx, auth.RegisterUserInput{
			Email:     req.Email,
			Password:  req.Password,
			Nickname:  req.Nickname,
			Birthdate: birthdate,
		})
		if err != nil {
			handlers.RespondError(w, r, log, err)

			return
		}

		log.Info("User registered", slog.String("uid", user.UserID))

		ResponseOK(w, r, user)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, user models.User) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp.WithPayload(Payload{
		UserID:    user.UserID,
		CreatedAt: user.CreatedAt,
	}))
}
