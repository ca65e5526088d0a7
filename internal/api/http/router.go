package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/josoro11/FOXITE-V2/internal/api/http/handlers"
	"github.com/josoro11/FOXITE-V2/internal/auth"
	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Organizations  *handlers.OrganizationsHandler
	Directory      *handlers.DirectoryHandler
	Assets         *handlers.AssetsHandler
	Sessions       *handlers.SessionsHandler
	SLA            *handlers.SLAHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/plans", cfg.Organizations.ListPlans)
	app.Post("/signup", cfg.Organizations.Signup)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/staff/login", cfg.Staff.Login)
	authGroup.Post("/password/reset/request", cfg.Staff.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Staff.ConfirmPasswordReset)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Post("/password/change", cfg.Staff.ChangePassword)

	// End-user portal. Ticket visibility is restricted to the caller's
	// own tickets and internal notes are filtered out.
	portal := app.Group("/portal", cfg.AuthMiddleware.Handle, auth.RequireUser())
	portal.Post("/tickets", cfg.Tickets.CreateTicket)
	portal.Get("/tickets", cfg.Tickets.ListTickets)
	portal.Get("/tickets/:id", cfg.Tickets.GetTicket)
	portal.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	portal.Post("/tickets/:id/close", cfg.Tickets.CloseTicket)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(
		domain.StaffRoleTechnician, domain.StaffRoleSupervisor, domain.StaffRoleAdmin,
	))

	staff.Post("/tickets", cfg.StaffTickets.CreateTicket)
	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetTicket)
	staff.Post("/tickets/:id/comments", cfg.StaffTickets.AddComment)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Patch("/tickets/:id/priority", cfg.StaffTickets.UpdatePriority)
	staff.Post("/tickets/:id/assign/self", cfg.StaffTickets.SelfAssign)
	staff.Get("/tickets/:id/history", cfg.StaffTickets.ListHistory)
	staff.Get("/tickets/:id/sessions", cfg.StaffTickets.ListTicketSessions)

	staff.Get("/companies", cfg.Directory.ListCompanies)
	staff.Get("/companies/:id", cfg.Directory.GetCompany)
	staff.Get("/end-users", cfg.Directory.ListEndUsers)
	staff.Get("/end-users/:id", cfg.Directory.GetEndUser)

	staff.Get("/devices", cfg.Assets.ListDevices)
	staff.Get("/devices/:id", cfg.Assets.GetDevice)
	staff.Post("/devices", cfg.Assets.CreateDevice)
	staff.Put("/devices/:id", cfg.Assets.UpdateDevice)
	staff.Get("/licenses", cfg.Assets.ListLicenses)
	staff.Get("/licenses/:id", cfg.Assets.GetLicense)
	staff.Post("/licenses", cfg.Assets.CreateLicense)

	staff.Post("/sessions", cfg.Sessions.StartSession)
	staff.Post("/sessions/:id/stop", cfg.Sessions.StopSession)
	staff.Get("/sessions", cfg.Sessions.ListSessions)

	staff.Get("/dashboard", cfg.Dashboard.Stats)
	staff.Get("/organization", cfg.Organizations.GetOrganization)
	staff.Get("/organization/entitlements", cfg.Organizations.GetEntitlements)

	// Group middleware applies to routes registered below it, so the
	// role-restricted groups come after the all-staff routes.
	supervisors := staff.Group("", auth.RequireStaffRole(domain.StaffRoleSupervisor, domain.StaffRoleAdmin))
	supervisors.Post("/tickets/:id/assign", cfg.StaffTickets.Assign)
	supervisors.Delete("/tickets/:id/assign", cfg.StaffTickets.Unassign)
	supervisors.Post("/companies", cfg.Directory.CreateCompany)
	supervisors.Put("/companies/:id", cfg.Directory.UpdateCompany)
	supervisors.Post("/end-users", cfg.Directory.CreateEndUser)

	admins := staff.Group("", auth.RequireStaffRole(domain.StaffRoleAdmin))
	admins.Post("/members", cfg.Staff.CreateStaff)
	admins.Get("/members", cfg.Staff.ListStaff)
	admins.Get("/members/:id", cfg.Staff.GetStaff)
	admins.Put("/members/:id", cfg.Staff.UpdateStaff)
	admins.Get("/organization/usage", cfg.Organizations.GetUsage)
	admins.Put("/organization/plan", cfg.Organizations.ChangePlan)
	admins.Put("/organization/status", cfg.Organizations.SetStatus)
	admins.Get("/sla/policies", cfg.SLA.ListPolicies)
	admins.Post("/sla/policies", cfg.SLA.CreatePolicy)
	admins.Put("/sla/policies/:id", cfg.SLA.UpdatePolicy)
	admins.Get("/sla/business-hours", cfg.SLA.GetBusinessHours)
	admins.Put("/sla/business-hours", cfg.SLA.SetBusinessHours)
}
