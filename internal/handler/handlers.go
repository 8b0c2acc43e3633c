package handler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"sitewatch/internal/snapshot"
	"sitewatch/internal/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Loader *snapshot.Loader
	Store  Pinger
}

func NewHandler(loader *snapshot.Loader, store Pinger) *Handler {
	return &Handler{Loader: loader, Store: store}
}

// Snapshot serves the dashboard view as JSON.
func (h *Handler) Snapshot(c echo.Context) error {
	key, ok := snapshot.ParseSortKey(c.QueryParam("sort"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "sort must be one of name, down, ssl, domain")
	}
	return c.JSON(http.StatusOK, h.Loader.Load(c.Request().Context(), key))
}

// SnapshotCSV exports the same rows in the status log's column layout.
func (h *Handler) SnapshotCSV(c echo.Context) error {
	key, ok := snapshot.ParseSortKey(c.QueryParam("sort"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "sort must be one of name, down, ssl, domain")
	}
	snap := h.Loader.Load(c.Request().Context(), key)

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment;filename=snapshot.csv")
	c.Response().WriteHeader(http.StatusOK)

	writer := csv.NewWriter(c.Response().Writer)
	defer writer.Flush()

	_ = writer.Write([]string{"Name", "URL", "Logo URL", "Status", "SSL Expiry", "Domain Expiry", "Down"})
	for _, r := range snap.Rows {
		status := string(r.Status)
		if status == "" {
			status = "N/A"
		}
		_ = writer.Write([]string{
			r.Name,
			r.URL,
			r.LogoURL,
			status,
			r.SSLDisplay,
			r.DomainDisplay,
			strconv.FormatBool(r.IsDown),
		})
	}
	return nil
}

func (h *Handler) Health(c echo.Context) error {
	if h.Store != nil {
		if err := h.Store.Ping(c.Request().Context()); err != nil {
			utils.Log.Warn("health check failed", utils.Field("error", err.Error()))
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
