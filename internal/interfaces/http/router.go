package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/cashdesk-api/internal/application/analytics"
	"github.com/jhoicas/cashdesk-api/internal/application/auth"
	"github.com/jhoicas/cashdesk-api/internal/application/custody"
	"github.com/jhoicas/cashdesk-api/internal/application/expenses"
	"github.com/jhoicas/cashdesk-api/internal/application/usecase"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	CompanyUC     *usecase.CompanyUseCase
	Modules       moduleChecker
	ExpensesUC    *expenses.UseCase
	CustodyUC     *custody.UseCase
	DashboardUC   *appanalytics.DashboardUseCase
	Notifications inbox
	Resolver      principalResolver
	JWTSecret     string
}

// Router registra las rutas de la API. Las rutas protegidas aplican el mismo
// Guard que los casos de uso; el chequeo en el router solo corta antes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Solo identidad: crear empresa y leer avisos no dependen de la membresía.
	identity := IdentityMiddleware(deps.JWTSecret)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	api.Post("/companies", identity, companyHandler.Create)

	notificationHandler := NewNotificationHandler(deps.Notifications)
	api.Get("/notifications", identity, notificationHandler.List)
	api.Post("/notifications/:id/read", identity, notificationHandler.MarkRead)

	// Rutas con sesión resuelta (Principal en Locals)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret, deps.Resolver))

	protected.Get("/me/capabilities", authHandler.Capabilities)
	protected.Get("/company", companyHandler.Current)
	protected.Put("/team/members",
		RequirePermission(access.ModeAny, access.PermTeamManage),
		companyHandler.AssignRole)

	// Movimientos (módulo de gastos)
	movementHandler := NewMovementHandler(deps.ExpensesUC)
	movements := protected.Group("/movements",
		RequireModule(entity.ModuleExpenses, deps.Modules),
		RequirePermission(access.ModeAny, access.PermExpensesView))
	movements.Get("/", movementHandler.List)
	movements.Post("/", RequirePermission(access.ModeAny, access.PermExpensesCreate), movementHandler.Create)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Put("/:id", movementHandler.Update)
	movements.Delete("/:id", movementHandler.Delete)
	movements.Post("/:id/submit", movementHandler.Submit)
	movements.Post("/:id/approve", RequirePermission(access.ModeAny, access.PermExpensesApprove), movementHandler.Approve)
	movements.Post("/:id/reject", RequirePermission(access.ModeAny, access.PermExpensesReject), movementHandler.Reject)

	// Custodias
	custodyHandler := NewCustodyHandler(deps.CustodyUC)
	custodies := protected.Group("/custodies",
		RequireModule(entity.ModuleCustody, deps.Modules),
		RequirePermission(access.ModeAny, access.PermCustodyView))
	custodies.Get("/", custodyHandler.List)
	custodies.Post("/", RequirePermission(access.ModeAny, access.PermCustodyManage), custodyHandler.Create)
	custodies.Get("/:id", custodyHandler.GetByID)
	custodies.Get("/:id/transactions", custodyHandler.Statement)
	custodies.Post("/:id/transactions", custodyHandler.ApplyTransaction)
	custodies.Post("/:id/deactivate", RequirePermission(access.ModeAny, access.PermCustodyManage), custodyHandler.Deactivate)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary",
		RequirePermission(access.ModeAny, access.PermDashboardView),
		dashboardHandler.GetSummary)
}
