package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/marketplace-api/internal/application/auth"
	"github.com/marketplace-api/internal/application/kyc"
	"github.com/marketplace-api/internal/application/listing"
	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/application/token"
	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/infrastructure/dynamo"
	"github.com/marketplace-api/internal/infrastructure/jwtinfra"
	"github.com/marketplace-api/internal/infrastructure/s3infra"
	"github.com/marketplace-api/internal/infrastructure/sms"
	"github.com/marketplace-api/internal/transport/http/handler"
	appmiddleware "github.com/marketplace-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *dynamo.UserRepo
	OTPRepo      *dynamo.OTPRepo
	TokenRepo    *dynamo.RefreshTokenRepo
	ListingRepo  *dynamo.ListingRepo
	KycRepo      *dynamo.KycDocumentRepo
	S3Store      *s3infra.Store
	SMSRouter    *sms.Router
	JWTProvider  *jwtinfra.Provider
	TokenService token.Service
	OTPService   otp.Service
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo: deps.UserRepo,
		OTPs:     deps.OTPService,
		Tokens:   deps.TokenService,
	})
	listingSvc := listing.NewService(deps.ListingRepo)
	kycSvc := kyc.NewService(kyc.ServiceDeps{
		DocumentRepo: deps.KycRepo,
		ObjectStore:  deps.S3Store,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	listingH := handler.NewListingHandler(listingSvc)
	kycH := handler.NewKycHandler(kycSvc)
	smsH := handler.NewSMSHandler(deps.SMSRouter)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/verify-registration", authH.VerifyRegistration)
		r.With(sensitiveRL.Limit).Post("/auth/send-login-otp", authH.SendLoginOTP)
		r.With(sensitiveRL.Limit).Post("/auth/verify-login", authH.VerifyLogin)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", authH.VerifyOTP)
		r.Post("/auth/refresh-token", authH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Post("/auth/logout", authH.Logout)
			r.Get("/auth/me", authH.Me)

			r.Get("/listings", listingH.List)
			r.Get("/listings/{id}", listingH.Get)

			r.Post("/kyc/documents", kycH.Upload)
			r.Get("/kyc/documents", kycH.List)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/sms/providers", smsH.Providers)
			})
		})
	})

	return r
}
