package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"trophy-progression-system/config"
	"trophy-progression-system/handlers"
	"trophy-progression-system/middleware"
	"trophy-progression-system/services"
	"trophy-progression-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func identityProvider(cfg *config.Config) services.IdentityProvider {
	switch {
	case cfg.JWTSecret != "":
		log.Println("🔑 Identity: HS256 bearer tokens")
		return services.NewJWTVerifier(cfg.JWTSecret)
	case cfg.AuthServiceURL != "":
		log.Printf("🔑 Identity: auth service at %s", cfg.AuthServiceURL)
		return services.NewAuthServiceClient(cfg.AuthServiceURL, cfg.GameServiceToken)
	default:
		log.Println("⚠️  No JWT_SECRET or AUTH_SERVICE_URL — only gateway identity headers are accepted")
		return nil
	}
}

// newApp wires every route. Shared by serve and the handler tests.
func newApp(cfg *config.Config, db *gorm.DB, source services.CatalogSource) *fiber.App {
	handlers.ExposeErrorDetail = cfg.ExposeErrorDetail

	app := fiber.New(fiber.Config{
		AppName:   "trophy-progression",
		BodyLimit: 1 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupHealthRoutes(app, db)

	users := services.NewUserDirectory(db)
	app.Use(middleware.GatewayAuthMiddleware(cfg.GameServiceToken, cfg.RequireGateway))
	app.Use(middleware.UserContextMiddleware(identityProvider(cfg), users))

	trophies := services.NewTrophyService(db)
	catalog := services.NewCatalogService(db, source)
	challenges := services.NewChallengeService(db, cfg.EnforceChallengeRequirements)
	shop := services.NewShopService(db)
	ranking := services.NewRankingService(db, cfg.RankingLimit, cfg.DefaultAvatarURL)

	handlers.SetupTrophyRoutes(app, trophies, catalog)
	handlers.SetupRankingRoutes(app, ranking, challenges)
	handlers.SetupShopRoutes(app, shop)
	handlers.SetupUserRoutes(app, ranking, users)
	return app
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := catalogSource(ctx, cfg)
	if err != nil {
		return err
	}
	app := newApp(cfg, db, source)

	sched, err := services.NewCatalogService(db, source).StartReseedScheduler(ctx, cfg.CatalogReseedInterval)
	if err != nil {
		return err
	}
	if sched != nil {
		defer func() { _ = sched.Shutdown() }()
	}

	if cfg.SyncServiceURL != "" {
		workers.NewProfileSyncWorker(db, cfg.SyncServiceURL, cfg.SyncEndpointPath, cfg.GameServiceToken, cfg.SyncInterval).Start(ctx)
	}

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost%s", cfg.Addr())
	log.Printf("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	return app.ShutdownWithTimeout(10 * time.Second)
}
