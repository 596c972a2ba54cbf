package reports

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"bondbook-backend/internal/application/reports"
	"bondbook-backend/internal/domain"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handlers struct {
	Service *reports.Service
}

func yearParam(c *fiber.Ctx) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().UTC().Year(), nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation("Invalid year.")
	}
	return y, nil
}

// GET /api/v1/reports/yearly-contributions
func (h *Handlers) YearlyContributions(c *fiber.Ctx) error {
	rows, err := h.Service.YearlyContributions(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Yearly contributions", rows, nil)
}

// GET /api/v1/reports/monthly-contributions
func (h *Handlers) MonthlyContributions(c *fiber.Ctx) error {
	rows, err := h.Service.MonthlyContributions(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Monthly contributions", rows, nil)
}

// GET /api/v1/reports/total-asset-value
func (h *Handlers) TotalAssetValue(c *fiber.Ctx) error {
	total, err := h.Service.TotalAssetValue(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Total asset value", fiber.Map{"total_value": total}, nil)
}

// GET /api/v1/reports/yearly-investments?year=2024
func (h *Handlers) YearlyInvestments(c *fiber.Ctx) error {
	year, err := yearParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	rep, err := h.Service.YearlyInvestments(c.UserContext(), year)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Yearly investments", rep, fiber.Map{"count": len(rep.Transactions)})
}

// ExportYearlyInvestments streams the same report as an xlsx workbook.
func (h *Handlers) ExportYearlyInvestments(c *fiber.Ctx) error {
	year, err := yearParam(c)
	if err != nil {
		return response.FromError(c, err)
	}
	rep, err := h.Service.YearlyInvestments(c.UserContext(), year)
	if err != nil {
		return response.FromError(c, err)
	}
	var buf bytes.Buffer
	if err := reports.WriteYearlyInvestmentsXLSX(&buf, rep); err != nil {
		log.Error().Err(err).Int("year", year).Msg("xlsx export failed")
		return response.Error(c, response.InternalMessage, fiber.StatusInternalServerError, nil)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="yearly-investments-%d.xlsx"`, year))
	return c.Send(buf.Bytes())
}
