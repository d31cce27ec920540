package main

import (
	"log/slog"

	accountInfo "user_service/internal/http_server/handlers/account_info"
	"user_service/internal/http_server/handlers/login"
	"user_service/internal/http_server/handlers/logout"
	"user_service/internal/http_server/handlers/refresh"
	sellerJoin "user_service/internal/http_server/handlers/seller_join"
	sellerUpdate "user_service/internal/http_server/handlers/seller_update"
	sendCode "user_service/internal/http_server/handlers/send_verification_code"
	updatePassword "user_service/internal/http_server/handlers/update_password"
	userJoin "user_service/internal/http_server/handlers/user_join"
	userUpdate "user_service/internal/http_server/handlers/user_update"
	verifyCode "user_service/internal/http_server/handlers/verify_code"
	"user_service/internal/middleware/authn"
	rateLimit "user_service/internal/middleware/ratelimit"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

type authService interface {
	refresh.TokenRefresher
	logout.Logouter
	login.LoginProvider
	sendCode.CodeSender
	verifyCode.CodeVerifier
	userJoin.UserRegistrar
	sellerJoin.SellerRegistrar
	authn.Authenticator
	accountInfo.InfoProvider
	userUpdate.NicknameUpdater
	sellerUpdate.SellerNameUpdater
	updatePassword.PasswordUpdater
}

func setupRouter(
	log *slog.Logger,
	validate *validator.Validate,
	svc authService,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/user-service", func(r chi.Router) {
		r.With(rateLimit.Refresh()).Post("/refresh",
			refresh.New(log, validate, svc),
		)
		r.With(rateLimit.Logout()).Post("/logout",
			logout.New(log, validate, svc),
		)
		r.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, svc),
		)

		r.Route("/mail", func(r chi.Router) {
			r.With(rateLimit.SendVerificationCode()).Post("/send-verification-code",
				sendCode.New(log, validate, svc),
			)
			r.With(rateLimit.VerifyCode()).Post("/verify-code",
				verifyCode.New(log, validate, svc),
			)
		})

		r.With(rateLimit.Join()).Post("/users/join",
			userJoin.New(log, validate, svc),
		)
		r.With(rateLimit.Join()).Post("/sellers/join",
			sellerJoin.New(log, validate, svc),
		)

		r.Group(func(r chi.Router) {
			r.Use(authn.New(log, svc))

			r.Get("/info", accountInfo.New(log, svc))
			r.With(rateLimit.Update()).Put("/users/update",
				userUpdate.New(log, validate, svc),
			)
			r.With(rateLimit.Update()).Put("/sellers/update",
				sellerUpdate.New(log, validate, svc),
			)
			r.With(rateLimit.Update()).Put("/password",
				updatePassword.New(log, validate, svc),
			)
		})
	})

	return r
}
