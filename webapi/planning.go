package webapi

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/telephant/firewise/pkg/amortize"
	"github.com/telephant/firewise/pkg/domain"
	"github.com/telephant/firewise/pkg/runway"
	"github.com/telephant/firewise/pkg/stats"
)

// PlanningService is the slice of the planning facade the HTTP layer uses.
type PlanningService interface {
	GetFinancialStats(ctx context.Context, scope domain.Scope, forceRefresh bool) (*stats.FinancialStats, error)
	GetRunway(ctx context.Context, scope domain.Scope) (*runway.Projection, error)
	GetFlowFreedom(ctx context.Context, scope domain.Scope) (*runway.FlowFreedom, error)
	GetDebtScheduleByID(ctx context.Context, scope domain.Scope, debtID uuid.UUID) (*amortize.Schedule, error)
	InvalidateStatsCache(scope domain.Scope)
}

// PlanningRoutes registers the projection endpoints.
func PlanningRoutes(app *fiber.App, svc PlanningService, logger *slog.Logger) {
	api := app.Group("/api")

	api.Get("/stats", GetStats(svc, logger))
	api.Post("/stats/invalidate", InvalidateStats(svc))
	api.Get("/runway", GetRunway(svc, logger))
	api.Get("/flow-freedom", GetFlowFreedom(svc, logger))
	api.Get("/debts/:id/schedule", GetDebtSchedule(svc, logger))
	api.Post("/debts/preview", PreviewDebtSchedule())
}

// GetStats returns the scope's financial snapshot. Pass force_refresh=true to
// bypass the snapshot cache.
func GetStats(svc PlanningService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromRequest(c)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid scope", err.Error())
		}

		snapshot, err := svc.GetFinancialStats(c.Context(), scope, c.QueryBool("force_refresh"))
		if err != nil {
			logger.Error("computing stats failed", "scope", scope.Key(), "error", err)
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to compute stats", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Financial stats", snapshot)
	}
}

// InvalidateStats drops the scope's cached snapshot.
func InvalidateStats(svc PlanningService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromRequest(c)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid scope", err.Error())
		}
		svc.InvalidateStatsCache(scope)
		return SuccessResponseJSON(c, fiber.StatusOK, "Stats cache invalidated", nil)
	}
}

// GetRunway returns the year-by-year net-worth projection.
func GetRunway(svc PlanningService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromRequest(c)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid scope", err.Error())
		}

		projection, err := svc.GetRunway(c.Context(), scope)
		if err != nil {
			logger.Error("runway simulation failed", "scope", scope.Key(), "error", err)
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to simulate runway", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Runway projection", projection)
	}
}

// GetFlowFreedom returns the percentage-to-freedom metrics.
func GetFlowFreedom(svc PlanningService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromRequest(c)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid scope", err.Error())
		}

		freedom, err := svc.GetFlowFreedom(c.Context(), scope)
		if err != nil {
			logger.Error("flow freedom computation failed", "scope", scope.Key(), "error", err)
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to compute flow freedom", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Flow freedom", freedom)
	}
}

// GetDebtSchedule returns the amortization schedule for one debt.
func GetDebtSchedule(svc PlanningService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope, err := scopeFromRequest(c)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid scope", err.Error())
		}

		debtID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid debt id", err.Error())
		}

		schedule, err := svc.GetDebtScheduleByID(c.Context(), scope, debtID)
		if err != nil {
			logger.Error("debt schedule failed", "scope", scope.Key(), "debt", debtID, "error", err)
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to build schedule", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Amortization schedule", schedule)
	}
}
