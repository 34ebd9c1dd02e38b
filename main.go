package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"homepro-server/config"
	"homepro-server/database"
	"homepro-server/jobs"
	"homepro-server/metrics"
	"homepro-server/middleware"
	"homepro-server/routes"
	"homepro-server/services"
	"homepro-server/utils"
	ws "homepro-server/websocket"
)

func main() {
	seed := flag.Bool("seed", false, "insert the demo catalog and exit")
	flag.Parse()

	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := utils.NewLogger(false)
		boot.Fatal().Err(err).Msg("❌ Invalid configuration")
	}

	log := utils.NewLogger(cfg.IsRelease())
	if envErr != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *seed {
		if err := seedDatabase(ctx, cfg.Database.URL, log); err != nil {
			log.Fatal().Err(err).Msg("❌ Seeding failed")
		}
		return
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("❌ Server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("❌ Failed to close database")
		}
	}()

	if err := database.Migrate(db); err != nil {
		return err
	}

	if cfg.Server.MetricsEnabled {
		metrics.Register()
	}

	// Live booking events go to the owner's sockets and, when configured, their inbox
	hub := ws.NewHub(log)
	notifiers := services.MultiNotifier{hub}
	var mailer *services.MailNotifier
	if cfg.SMTPEnabled() {
		mailer = services.NewMailNotifier(db, cfg.SMTP, log)
		notifiers = append(notifiers, mailer)
	} else {
		log.Warn().Msg("⚠️ SMTP not configured, confirmation mails are disabled")
	}

	jwtService := services.NewJWTService(db, cfg.JWT, log)

	resolvers := []services.IdentityResolver{services.NewLocalTokenResolver(jwtService, db)}
	var federated services.IdentityResolver
	if cfg.Google.ClientID != "" {
		google, err := services.NewGoogleTokenResolver(ctx, cfg.Google.ClientID, db, log)
		if err != nil {
			return err
		}
		federated = google
		resolvers = append(resolvers, google)
	} else {
		log.Warn().Msg("⚠️ GOOGLE_CLIENT_ID not set, Google sign-in is disabled")
	}
	resolver := services.NewChainResolver(log, resolvers...)

	var gateway services.PaymentGateway
	if cfg.StripeEnabled() {
		gateway = services.NewStripeGateway(cfg.Stripe.SecretKey, nil)
	} else {
		log.Warn().Msg("⚠️ STRIPE_SECRET_KEY not set, payments are disabled")
	}

	var uploader services.ImageUploader
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryUploader(cfg.Cloudinary)
		if err != nil {
			return err
		}
		uploader = cld
	} else {
		log.Warn().Msg("⚠️ Cloudinary not configured, avatar uploads are disabled")
	}

	bookings := services.NewBookingService(db, notifiers, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthPerMinute)

	router, err := routes.NewRouter(routes.Deps{
		Log:            log,
		DB:             db,
		Resolver:       resolver,
		Auth:           services.NewAuthService(db, jwtService, federated, log),
		Providers:      services.NewProviderService(db),
		Availability:   services.NewAvailabilityService(db),
		Bookings:       bookings,
		Payments:       services.NewPaymentService(db, gateway, bookings, cfg.Stripe.Currency, log),
		Reviews:        services.NewReviewService(db, log),
		Users:          services.NewUserService(db, uploader, log),
		Hub:            hub,
		Limiter:        limiter,
		AuthLimiter:    authLimiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MetricsEnabled: cfg.Server.MetricsEnabled,
	})
	if err != nil {
		return err
	}

	// Start background workers
	go hub.Run(ctx)
	go limiter.RunCleanup(ctx, 10*time.Minute)
	go authLimiter.RunCleanup(ctx, 10*time.Minute)

	cleanupJob := jobs.NewCleanupJob(jwtService, cfg.Jobs.TokenCleanupInterval, log)
	cleanupJob.Start(ctx)
	defer cleanupJob.Stop()

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("🚀 Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("🛑 Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Graceful shutdown failed")
	}

	if mailer != nil {
		mailer.Wait()
	}
	log.Info().Msg("👋 Server stopped")
	return nil
}
