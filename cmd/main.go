package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"gatekeeper/api/handler"
	apiMiddleware "gatekeeper/api/middleware"
	"gatekeeper/api/routes"
	"gatekeeper/config"
	"gatekeeper/internal/entity"
	"gatekeeper/internal/repository"
	"gatekeeper/internal/service"
	"gatekeeper/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	db, err := config.ConnectDB()
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	if err := db.AutoMigrate(
		&entity.AllowedAddress{},
		&entity.PublicAccessConfig{},
		&entity.VerificationToken{},
		&entity.AdminUser{},
		&entity.AuditLog{},
	); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	validate := validator.New()

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Fatal("JWT_SECRET is required")
	}
	jwtManager := utils.JWTManager{
		Secret:         jwtSecret,
		Issuer:         os.Getenv("JWT_ISSUER"),
		AccessTokenTTL: 15 * time.Minute,
	}

	allowListRepo := repository.NewAllowListRepository(db)
	publicAccessRepo := repository.NewPublicAccessRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	var detector service.AddressDetector
	if endpoint := os.Getenv("IP_DETECTION_URL"); endpoint != "" {
		detector = service.NewHTTPAddressDetector(endpoint)
	}

	var sender service.CodeSender
	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		sender = service.NewResendCodeSender(apiKey, os.Getenv("EMAIL_FROM"), os.Getenv("APP_BASE_URL"))
	}

	accessService := service.NewAccessService(
		allowListRepo,
		publicAccessRepo,
		auditRepo,
		detector,
		logger,
		service.AccessConfig{
			DevBypass: os.Getenv("ACCESS_DEV_BYPASS") == "true",
		},
	)
	tokenService := service.NewTokenService(
		tokenRepo,
		auditRepo,
		sender,
		service.RealClock{},
		logger,
		service.TokenConfig{
			RegistrationTTL: 12 * time.Hour,
			ReverifyTTL:     15 * time.Minute,
			RateLimitWindow: time.Hour,
			RateLimitMax:    5,
		},
	)
	authService := service.NewAdminAuthService(
		adminRepo,
		auditRepo,
		service.BcryptPasswordHasher{},
		&jwtManager,
	)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.Seed(seedCtx, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		logger.WithError(err).Warn("admin seed failed")
	}
	cancel()

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	router := routes.NewRouter(
		app,
		handler.NewAuthHandler(authService, validate),
		handler.NewAccessHandler(accessService, validate),
		handler.NewTokenHandler(tokenService, validate),
		apiMiddleware.AuthMiddleware{JWT: &jwtManager},
	)
	router.RegisterRoutes()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", addr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
