package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/WhyILived/Dreamwell/internal/middleware"
	"github.com/WhyILived/Dreamwell/internal/repository"
)

// ExportHandler serves the persisted channel catalog, as JSON for the
// API and as a CSV download for spreadsheet workflows.
type ExportHandler struct {
	repo *repository.ChannelRepo
}

func NewExportHandler(repo *repository.ChannelRepo) *ExportHandler {
	return &ExportHandler{repo: repo}
}

// List handles GET /api/channels.
func (h *ExportHandler) List(c fiber.Ctx) error {
	if h.repo == nil {
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "STORAGE_DISABLED", "No database configured")
	}
	limit := fiber.Query(c, "limit", 100)

	rows, err := h.repo.ListChannels(c.Context(), limit)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list channels")
	}
	return c.JSON(fiber.Map{"channels": rows, "count": len(rows)})
}

// Get handles GET /api/channels/:channelId.
func (h *ExportHandler) Get(c fiber.Ctx) error {
	if h.repo == nil {
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "STORAGE_DISABLED", "No database configured")
	}
	channelID, errMsg := middleware.ValidateChannelID(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_CHANNEL_ID", errMsg)
	}

	row, err := h.repo.FindByID(c.Context(), channelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "CHANNEL_NOT_FOUND", "Channel not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load channel")
	}
	return c.JSON(row)
}

var exportHeader = []string{
	"channel_id", "title", "country", "keyword", "subscribers",
	"avg_recent_views", "engagement_rate", "niche",
	"cpm_min", "cpm_max", "rpm_min", "rpm_max",
	"price_min", "price_max", "profit_min", "profit_max",
}

// ExportCSV handles GET /api/channels/export — streams the channel
// catalog as a CSV attachment.
func (h *ExportHandler) ExportCSV(c fiber.Ctx) error {
	if h.repo == nil {
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "STORAGE_DISABLED", "No database configured")
	}

	rows, err := h.repo.ListChannels(c.Context(), 10000)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list channels")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build export")
	}
	for _, row := range rows {
		subs := ""
		if row.Channel.Subscribers != nil {
			subs = strconv.FormatInt(*row.Channel.Subscribers, 10)
		}
		record := []string{
			row.Channel.ID,
			row.Channel.Title,
			row.Channel.Country,
			row.Channel.Keyword,
			subs,
			formatFloat(row.Snapshot.AvgRecentViews),
			formatFloat(row.Snapshot.EngagementRate),
			row.Snapshot.Niche,
			formatFloat(row.Snapshot.CPMMin),
			formatFloat(row.Snapshot.CPMMax),
			formatFloat(row.Snapshot.RPMMin),
			formatFloat(row.Snapshot.RPMMax),
			formatFloat(row.Snapshot.PriceMin),
			formatFloat(row.Snapshot.PriceMax),
			formatFloat(row.Snapshot.ProfitMin),
			formatFloat(row.Snapshot.ProfitMax),
		}
		if err := w.Write(record); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build export")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build export")
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=channels.csv")
	return c.Send(buf.Bytes())
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
