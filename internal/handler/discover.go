package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/WhyILived/Dreamwell/internal/middleware"
	"github.com/WhyILived/Dreamwell/internal/model"
	"github.com/WhyILived/Dreamwell/internal/service"
)

type DiscoverHandler struct {
	pipeline *service.PipelineService
	score    *service.ScoreService
}

func NewDiscoverHandler(pipeline *service.PipelineService, score *service.ScoreService) *DiscoverHandler {
	return &DiscoverHandler{pipeline: pipeline, score: score}
}

type discoverRequest struct {
	Keywords []string `json:"keywords"`
	Filters  struct {
		Region         string `json:"region"`
		Language       string `json:"language"`
		PublishedAfter string `json:"publishedAfter"` // RFC 3339 or YYYY-MM-DD
		Order          string `json:"order"`
		MaxResults     int    `json:"maxResults"`
	} `json:"filters"`
	Buyer struct {
		Values        []string `json:"values"`
		Country       string   `json:"country"`
		Luxury        bool     `json:"luxury"`
		ProductProfit float64  `json:"productProfit"`
	} `json:"buyer"`
	Weights *model.Weights `json:"weights"` // optional per-run ranking override
}

// Run handles POST /api/discover — one end-to-end discovery run.
func (h *DiscoverHandler) Run(c fiber.Ctx) error {
	var body discoverRequest
	if err := c.Bind().JSON(&body); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
	}

	keywordList, errMsg := middleware.ValidateKeywords(body.Keywords)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	region, errMsg := middleware.ValidateCountry(body.Filters.Region)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "filters: "+errMsg)
	}
	buyerCountry, errMsg := middleware.ValidateCountry(body.Buyer.Country)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "buyer: "+errMsg)
	}
	values, errMsg := middleware.ValidateValues(body.Buyer.Values)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	req := service.DiscoverRequest{
		Keywords: keywordList,
		Filters: model.SearchFilters{
			Region:     region,
			Language:   body.Filters.Language,
			Order:      body.Filters.Order,
			MaxResults: body.Filters.MaxResults,
		},
		Buyer: model.BuyerContext{
			Values:        values,
			Country:       buyerCountry,
			Luxury:        body.Buyer.Luxury,
			ProductProfit: body.Buyer.ProductProfit,
		},
	}
	if body.Weights != nil {
		if err := body.Weights.Validate(); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_WEIGHTS", err.Error())
		}
		req.Weights = body.Weights
	}
	if body.Filters.PublishedAfter != "" {
		after, err := parseDate(body.Filters.PublishedAfter)
		if err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "publishedAfter must be RFC 3339 or YYYY-MM-DD")
		}
		req.Filters.PublishedAfter = after
	}

	start := time.Now()
	report, err := h.pipeline.Run(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrNoKeywords) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "at least one non-empty keyword is required")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Discovery run failed")
	}
	observePipelineRun(time.Since(start), len(report.Ranked))

	return c.JSON(report)
}

// GetWeights handles GET /api/weights.
func (h *DiscoverHandler) GetWeights(c fiber.Ctx) error {
	return c.JSON(h.score.Weights())
}

// SetWeights handles PUT /api/weights. Invalid weights are rejected
// and the previous set stays in force.
func (h *DiscoverHandler) SetWeights(c fiber.Ctx) error {
	var w model.Weights
	if err := c.Bind().JSON(&w); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
	}
	if err := h.score.SetWeights(w); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_WEIGHTS", err.Error())
	}
	return c.JSON(h.score.Weights())
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
