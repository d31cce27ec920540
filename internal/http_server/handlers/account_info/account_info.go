package accountInfo

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"user_service/internal/auth"
	"user_service/internal/http_server/handlers"
	resp "user_service/internal/lib/api/response"
	"user_service/internal/middleware/authn"
	"user_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const birthdateLayout = "2006-01-02"

type Payload struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	UserType   string    `json:"userType"`
	Nickname   string    `json:"nickname,omitempty"`
	Birthdate  string    `json:"birthdate,omitempty"`
	SellerName string    `json:"sellerName,omitempty"`
	SellerLogo []byte    `json:"sellerLogo,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type InfoProvider interface {
	AccountInfo(ctx context.Context, claims models.Claims) (models.AccountInfo, error)
}

// New returns the profile of the account the bearer token belongs to.
// It must run behind the authn middleware.
func New(log *slog.Logger, provider InfoProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.accountInfo.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		claims, ok := authn.ClaimsFromContext(r.Context())
		if !ok {
			handlers.RespondError(w, r, log, auth.ErrMissingBearer)

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		info, err := provider.AccountInfo(ctx, claims)
		if err != nil {
			handlers.RespondError(w, r, log, err)

			return
		}

		ResponseOK(w, r, info)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, info models.AccountInfo) {
	p := Payload{
		ID:         info.ExternalID,
		Email:      info.Email,
		UserType:   info.Type.String(),
		Nickname:   info.Nickname,
		SellerName: info.SellerName,
		SellerLogo: info.SellerLogo,
		CreatedAt:  info.CreatedAt,
		UpdatedAt:  info.UpdatedAt,
	}
	if !info.Birthdate.IsZero() {
		p.Birthdate = info.Birthdate.Format(birthdateLayout)
	}

	render.JSON(w, r, resp.WithPayload(p))
}
