package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/auth"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/catalog"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/checkout"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/order"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/recipe"
	infrapdf "github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/infrastructure/pdf"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/infrastructure/postgres"
	httpRouter "github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/interfaces/http"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/pkg/config"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/pkg/logger"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	medicationRepo := postgres.NewMedicationRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	recipeRepo := postgres.NewRecipeRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	catalogUC := catalog.NewUseCase(medicationRepo, stockRepo, userRepo)
	checkoutUC := checkout.NewUseCase(txRunner, userRepo, medicationRepo, recipeRepo)
	orderUC := order.NewUseCase(txRunner, orderRepo, log)
	recipeUC := recipe.NewUseCase(recipeRepo, medicationRepo)

	// PDF: comprobante de retiro del pedido
	pdfGenerator := infrapdf.NewReceiptGenerator()
	pdfUC := order.NewPDFUseCase(orderRepo, userRepo, medicationRepo, pdfGenerator)

	serverMetrics := metrics.NewServerMetrics("api")

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.MetricsMiddleware(serverMetrics))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FarmaGO API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		CatalogUC:  catalogUC,
		CheckoutUC: checkoutUC,
		OrderUC:    orderUC,
		PDFUC:      pdfUC,
		RecipeUC:   recipeUC,
		Metrics:    serverMetrics,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
