package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lunani254/present/internal/bidding/application"
	"github.com/lunani254/present/internal/bidding/domain"
	"github.com/lunani254/present/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// headerUserID carries the principal resolved by the identity collaborator
// upstream (API gateway). The engine trusts it as given.
const (
	headerUserID    = "X-User-ID"
	headerUserEmail = "X-User-Email"
)

// Handler exposes the bidding service over REST for the mobile UI
type Handler struct {
	service application.BiddingService
}

func NewHandler(service application.BiddingService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/products/:productID/bids", h.submitBid)
	api.Get("/products/:productID/bids", h.listBids)
	api.Get("/products/:productID/ranking", h.rankBids)
	api.Get("/bidders/:bidderID/bids", h.listBidderBids)
	api.Post("/products/:productID/bids/:bidID/decision", h.decideBid)
	api.Post("/products/:productID/bidder-count/sync", h.syncBidderCount)
}

type submitBidRequest struct {
	Amount float64 `json:"amount"`
}

type decideBidRequest struct {
	Decision string `json:"decision"`
}

func (h *Handler) submitBid(c *fiber.Ctx) error {
	bidderID := c.Get(headerUserID)
	if bidderID == "" {
		return errorResponse(c, fiber.StatusUnauthorized, "missing user identity")
	}

	var req submitBidRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	bid, err := h.service.SubmitBid(c.Context(), application.SubmitBidDTO{
		ProductID:   c.Params("productID"),
		BidderID:    bidderID,
		BidderEmail: c.Get(headerUserEmail),
		Amount:      req.Amount,
	})
	if err != nil {
		return domainError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toBidResponse(bid))
}

func (h *Handler) listBids(c *fiber.Ctx) error {
	bids, err := h.service.ListBids(c.Context(), c.Params("productID"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toBidResponses(bids))
}

func (h *Handler) rankBids(c *fiber.Ctx) error {
	bids, err := h.service.Rank(c.Context(), c.Params("productID"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(toBidResponses(bids))
}

func (h *Handler) listBidderBids(c *fiber.Ctx) error {
	views, err := h.service.ListBidderBids(c.Context(), c.Params("bidderID"))
	if err != nil {
		return domainError(c, err)
	}

	out := make([]bidderBidResponse, 0, len(views))
	for _, v := range views {
		out = append(out, bidderBidResponse{
			bidResponse:     toBidResponse(v.Bid),
			ProductName:     v.ProductName,
			MinimumBidPrice: v.MinimumBidPrice,
		})
	}
	return c.JSON(out)
}

func (h *Handler) decideBid(c *fiber.Ctx) error {
	actorID := c.Get(headerUserID)
	if actorID == "" {
		return errorResponse(c, fiber.StatusUnauthorized, "missing user identity")
	}

	bidID, err := uuid.Parse(c.Params("bidID"))
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid bid id")
	}

	var req decideBidRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Decide(c.Context(), application.DecideBidDTO{
		ProductID: c.Params("productID"),
		BidID:     bidID,
		Decision:  domain.Decision(req.Decision),
		ActorID:   actorID,
	})
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(fiber.Map{
		"bid":      toBidResponse(result.Target),
		"cascaded": toBidResponses(result.Cascaded),
	})
}

func (h *Handler) syncBidderCount(c *fiber.Ctx) error {
	count, err := h.service.SyncBidderCount(c.Context(), c.Params("productID"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"bidder_count": count})
}

// domainError maps the sentinel errors of the domain to HTTP status codes.
// Conflicts carry the wrapped message so the client can refresh with the
// current status instead of guessing.
func domainError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBidTooLow),
		errors.Is(err, domain.ErrInvalidDecision):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrBidNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, domain.ErrProductAlreadyResolved):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrCollaboratorUnavailable):
		status = fiber.StatusServiceUnavailable
	default:
		log.Error("Unhandled error in bidding API",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return errorResponse(c, status, "internal server error")
	}
	return errorResponse(c, status, err.Error())
}

func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
