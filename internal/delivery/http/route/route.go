package route

import (
	"github.com/ferdian3456/rosterbridge/internal/delivery/http"
	"github.com/ferdian3456/rosterbridge/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App                  *fiber.App
	AuthMiddleware       *middleware.AuthMiddleware
	WebhookMiddleware    fiber.Handler
	RateLimiter          fiber.Handler
	PromotionRateLimiter fiber.Handler
	DepartmentController *http.DepartmentController
	MemberController     *http.MemberController
	UserController       *http.UserController
	PlatformController   *http.PlatformController
}

func (c *RouteConfig) SetupRoute() {
	api := c.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	protected := []fiber.Handler{c.AuthMiddleware.ProtectedRoute()}
	if c.RateLimiter != nil {
		protected = append(protected, c.RateLimiter)
	}

	departmentGroup := api.Group("/departments", protected...)
	departmentGroup.Get("/:departmentId/capacity", c.DepartmentController.GetCapacity)
	departmentGroup.Get("/:departmentId/ranks/:rankId/capacity", c.DepartmentController.GetRankCapacity)
	departmentGroup.Post("/:departmentId/sync", c.DepartmentController.Sync)
	departmentGroup.Post("/:departmentId/history/archive", c.DepartmentController.ArchiveHistory)

	rankChange := []fiber.Handler{}
	if c.PromotionRateLimiter != nil {
		rankChange = append(rankChange, c.PromotionRateLimiter)
	}

	memberGroup := api.Group("/members", protected...)
	memberGroup.Post("/:memberId/promote", append(rankChange, c.MemberController.Promote)...)
	memberGroup.Post("/:memberId/demote", append(rankChange, c.MemberController.Demote)...)
	memberGroup.Put("/:memberId/status", c.MemberController.UpdateStatus)
	memberGroup.Delete("/:memberId", c.MemberController.Remove)
	memberGroup.Get("/:memberId/history", c.MemberController.GetHistory)

	userGroup := api.Group("/users", protected...)
	userGroup.Post("/me/sync", c.UserController.SyncSelf)

	platformGroup := api.Group("/platform", c.WebhookMiddleware)
	platformGroup.Post("/member-updates", c.PlatformController.MemberUpdated)
}
