package sellerJoin

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

type Request struct {
	Email      string `json:"email" validate:"required,mailaddr"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	SellerName string `json:"sellerName" validate:"required,max=100"`
	SellerLogo []byte `json:"sellerLogo,omitempty" validate:"max=1048576"`
}

type Payload struct {
	SellerID  string    `json:"sellerId"`
	CreatedAt time.Time `json:"createdAt"`
}

type SellerRegistrar interface {
	RegisterSeller(ctx context.Context, in auth.RegisterSellerInput) (models.Seller, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	registrar SellerRegistrar,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sellerJoin.New"

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

		seller, err := registrar.RegisterSeller(ctx, auth.RegisterSellerInput{
			Email:      req.Email,
			Password:   req.Password,
			SellerName: req.SellerName,
			SellerLogo: req.SellerLogo,
		})
		if err != nil {
			handlers.RespondError(w, r, log, err)

			return
		}

		log.Info("Seller registered", slog.String("sid", seller.SellerID))

		ResponseOK(w, r, seller)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, seller models.Seller) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp.WithPayload(Payload{
		SellerID:  seller.SellerID,
		CreatedAt: seller.CreatedAt,
	}))
}
