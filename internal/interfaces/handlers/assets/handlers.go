package assets

import (
	"bondbook-backend/internal/application/allocation"
	"bondbook-backend/internal/application/ownership"
	"bondbook-backend/internal/pkg/request"
	"bondbook-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Allocation *allocation.Service
	Ownership  *ownership.Projector
}

type createRequest struct {
	Name          string                          `json:"name" validate:"required"`
	Value         decimal.Decimal                 `json:"value"`
	Contributions []allocation.ContributionWeight `json:"contributions" validate:"dive"`
}

type updateRequest struct {
	Name       string                 `json:"name" validate:"required"`
	Value      decimal.Decimal        `json:"value"`
	Ownerships []ownership.OwnerInput `json:"ownerships"`
}

type distributeRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// POST /api/v1/assets: ownership seeded from contributions, or from total_bonds when omitted
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Allocation.CreateAsset(c.UserContext(), allocation.AssetInput{
		Name:          req.Name,
		Value:         req.Value,
		Contributions: req.Contributions,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Asset created", out, nil)
}

// GET /api/v1/assets
func (h *Handlers) List(c *fiber.Ctx) error {
	rows, err := h.Ownership.ProjectAll(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Assets fetched", rows, fiber.Map{"count": len(rows), "source": h.Ownership.Source.Name()})
}

// GET /api/v1/assets/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Ownership.Project(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Asset fetched", out, nil)
}

// PUT /api/v1/assets/:id replaces name, value and ownership rows
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := request.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req updateRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Ownership.UpdateAsset(c.UserContext(), id, req.Name, req.Value, req.Ownerships)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Asset updated", out, nil)
}

// POST /api/v1/interest/distribute, body {amount, date?}
func (h *Handlers) DistributeInterest(c *fiber.Ctx) error {
	var req distributeRequest
	if err := request.Bind(c, &req); err != nil {
		return response.FromError(c, err)
	}
	date, err := request.ParseDate("date", req.Date)
	if err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Allocation.DistributeInterest(c.UserContext(), req.Amount, date)
	if err != nil {
		if res != nil {
			// rows are committed; only the aggregate refresh failed for res.Failed
			return response.Error(c, "Interest recorded but some investor totals need reconcile", fiber.StatusInternalServerError, fiber.Map{"failed": res.Failed, "run_id": res.Run.ID})
		}
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Interest distributed", res, nil)
}
