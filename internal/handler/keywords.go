package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/WhyILived/Dreamwell/internal/keywords"
	"github.com/WhyILived/Dreamwell/internal/middleware"
)

type KeywordsHandler struct {
	scraper *keywords.Scraper
}

func NewKeywordsHandler(scraper *keywords.Scraper) *KeywordsHandler {
	return &KeywordsHandler{scraper: scraper}
}

type keywordsRequest struct {
	URL  string `json:"url"`
	TopN int    `json:"topN"`
}

// Scrape handles POST /api/keywords — extracts ranked keywords from a
// company landing page, to seed a discovery run.
func (h *KeywordsHandler) Scrape(c fiber.Ctx) error {
	var body keywordsRequest
	if err := c.Bind().JSON(&body); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
	}

	rawURL, errMsg := middleware.ValidateScrapeURL(body.URL)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	topN, errMsg := middleware.ValidateTopN(body.TopN)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	kws, err := h.scraper.FromURL(c.Context(), rawURL, topN)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "SCRAPE_FAILED", "Could not fetch or parse the target page")
	}

	return c.JSON(fiber.Map{
		"url":      keywords.NormalizeURL(rawURL),
		"keywords": kws,
	})
}
