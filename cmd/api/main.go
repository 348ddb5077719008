package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/application/token"
	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/infrastructure/dynamo"
	"github.com/marketplace-api/internal/infrastructure/jwtinfra"
	"github.com/marketplace-api/internal/infrastructure/s3infra"
	"github.com/marketplace-api/internal/infrastructure/sms"
	transporthttp "github.com/marketplace-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Token signing is mandatory; the whole auth surface depends on it.
	jwtProvider, err := jwtinfra.NewProvider(cfg.JWT)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// S3 store for KYC documents.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMS senders. Registration order is the failover order; the mock goes
	// last so real providers win whenever they are configured.
	snsSender, err := sms.NewSNSSender(cfg.SMS)
	if err != nil {
		log.Fatalf("sns sender: %v", err)
	}
	smsRouter := sms.NewRouter(
		sms.NewTwilioSender(cfg.SMS),
		sms.NewVonageSender(cfg.SMS),
		snsSender,
		sms.NewMockSender(),
	)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	otpRepo := dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.UserOTPs)
	tokenRepo := dynamo.NewRefreshTokenRepo(dynamoClient, cfg.DynamoTables.RefreshTokens)

	otpSvc := otp.NewService(otp.ServiceDeps{
		OTPRepo:           otpRepo,
		Router:            smsRouter,
		Settings:          cfg.OTP,
		PreferredProvider: domain.SMSProvider(cfg.SMS.PreferredProvider),
	})
	tokenSvc := token.NewService(token.ServiceDeps{
		TokenRepo: tokenRepo,
		Signer:    jwtProvider,
		Settings:  cfg.JWT,
	})

	deps := &transporthttp.Deps{
		UserRepo:     userRepo,
		OTPRepo:      otpRepo,
		TokenRepo:    tokenRepo,
		ListingRepo:  dynamo.NewListingRepo(dynamoClient, cfg.DynamoTables.Listings),
		KycRepo:      dynamo.NewKycDocumentRepo(dynamoClient, cfg.DynamoTables.KycDocuments),
		S3Store:      s3Store,
		SMSRouter:    smsRouter,
		JWTProvider:  jwtProvider,
		TokenService: tokenSvc,
		OTPService:   otpSvc,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// Background sweeper: purge expired passcodes and refresh tokens.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sweep(sweepCtx, cfg.CleanupInterval, otpSvc, tokenSvc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSweeper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func sweep(ctx context.Context, interval time.Duration, otpSvc otp.Service, tokenSvc token.Service) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := otpSvc.CleanupExpired(ctx); err != nil {
				slog.Error("otp cleanup failed", "err", err)
			} else if n > 0 {
				slog.Info("purged expired otps", "count", n)
			}
			if n, err := tokenSvc.CleanupExpired(ctx); err != nil {
				slog.Error("refresh token cleanup failed", "err", err)
			} else if n > 0 {
				slog.Info("purged expired refresh tokens", "count", n)
			}
		}
	}
}
