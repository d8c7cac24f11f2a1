package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/auth"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/catalog"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/checkout"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/order"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/application/recipe"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/internal/domain/entity"
	"github.com/AlmMz1905/Ingenieria-de-Software-2025/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	CatalogUC  *catalog.UseCase
	CheckoutUC *checkout.UseCase
	OrderUC    *order.UseCase
	PDFUC      *order.PDFUseCase
	RecipeUC   *recipe.UseCase
	Metrics    *metrics.ServerMetrics
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register/client", authHandler.RegisterClient)
	authGroup.Post("/register/pharmacy", authHandler.RegisterPharmacy)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Perfil (protegido)
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.AuthUC)
	users.Get("/profile", userHandler.GetProfile)
	users.Put("/profile", userHandler.UpdateProfile)

	// Catálogo de medicamentos (protegido; alta solo farmacia)
	medications := protected.Group("/medications")
	medicationHandler := NewMedicationHandler(deps.CatalogUC)
	medications.Post("/", RequireRole(entity.RolePharmacy), medicationHandler.Create)
	medications.Get("/", medicationHandler.List)
	medications.Get("/:id", medicationHandler.GetByID)
	medications.Get("/:id/pharmacies", medicationHandler.Pharmacies)

	// Inventario de la farmacia autenticada (protegido, solo farmacia)
	pharmacies := protected.Group("/pharmacies")
	pharmacyHandler := NewPharmacyHandler(deps.CatalogUC)
	pharmacies.Post("/stock", RequireRole(entity.RolePharmacy), pharmacyHandler.UpsertStock)
	pharmacies.Get("/stock", RequireRole(entity.RolePharmacy), pharmacyHandler.Inventory)
	pharmacies.Get("/:id", pharmacyHandler.GetByID)
	pharmacies.Get("/:id/inventory", pharmacyHandler.InventoryByID)

	// Recetas (protegido)
	recipes := protected.Group("/recipes")
	recipeHandler := NewRecipeHandler(deps.RecipeUC)
	recipes.Post("/", RequireRole(entity.RoleClient), recipeHandler.Create)
	recipes.Get("/", RequireRole(entity.RoleClient), recipeHandler.List)
	recipes.Put("/:id/validate", RequireRole(entity.RolePharmacy), recipeHandler.Validate)

	// Pedidos (protegido)
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.CheckoutUC, deps.OrderUC, deps.PDFUC, deps.Metrics)
	orders.Post("/", RequireRole(entity.RoleClient), orderHandler.Place)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/receipt", orderHandler.Receipt)
	orders.Post("/:id/confirm", RequireRole(entity.RolePharmacy), orderHandler.Confirm)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Post("/:id/return", orderHandler.Return)
	orders.Post("/:id/pickup", RequireRole(entity.RolePharmacy), orderHandler.Pickup)
	orders.Post("/:id/deliver", RequireRole(entity.RolePharmacy), orderHandler.Deliver)
	orders.Delete("/:id", RequireRole(entity.RolePharmacy), orderHandler.Delete)
}

// MetricsMiddleware cuenta peticiones y mide latencia por ruta.
func MetricsMiddleware(m *metrics.ServerMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		path := c.Route().Path
		m.Requests.WithLabelValues(path, c.Method(), strconv.Itoa(c.Response().StatusCode())).Inc()
		m.LatencyMS.WithLabelValues(path).Observe(float64(time.Since(start).Milliseconds()))
		return err
	}
}
