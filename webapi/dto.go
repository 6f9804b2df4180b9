package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/telephant/firewise/pkg/amortize"
)

// SchedulePreviewRequest is a what-if amortization input. It is not tied to
// any stored debt.
type SchedulePreviewRequest struct {
	Balance        decimal.Decimal `json:"balance" validate:"required"`
	InterestRate   float64         `json:"interest_rate" validate:"gte=0,lte=1"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment" validate:"required"`
}

// PreviewDebtSchedule computes an amortization schedule from request-supplied
// terms, without loading any scope data.
func PreviewDebtSchedule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[SchedulePreviewRequest](c)
		if err != nil {
			return nil
		}

		schedule, err := amortize.Build(
			input.Balance, input.InterestRate, input.MonthlyPayment, time.Now().UTC())
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to build schedule", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Amortization schedule", schedule)
	}
}
