package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/cinema-ticketing/internal/service"
)

// AnalyticsHandler exposes the admin sales reporting endpoints.
type AnalyticsHandler struct {
	Tickets *service.Tickets
}

func NewAnalyticsHandler(tickets *service.Tickets) *AnalyticsHandler {
	return &AnalyticsHandler{Tickets: tickets}
}

// parseRange reads from/to query params.  Both RFC3339 timestamps and plain
// dates are accepted; a date "to" is exclusive of nothing before the next
// midnight, so it is bumped by one day to keep the range intuitive.
func parseRange(c echo.Context) (from, to time.Time, err error) {
	from, err = parseTimeParam(c.QueryParam("from"), false)
	if err != nil {
		return from, to, fmt.Errorf("invalid from")
	}
	to, err = parseTimeParam(c.QueryParam("to"), true)
	if err != nil {
		return from, to, fmt.Errorf("invalid to")
	}
	if !to.After(from) {
		return from, to, fmt.Errorf("to must be after from")
	}
	return from, to, nil
}

func parseTimeParam(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t.UTC(), nil
}

// SalesByRange reports sold count and revenue for tickets issued in a range.
func (h *AnalyticsHandler) SalesByRange(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.Tickets.StatsByDateRange(ctx, from, to)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"from":          from,
		"to":            to,
		"sold":          stats.Sold,
		"revenue_cents": stats.RevenueCents,
	})
}

// SalesByMovie reports lifetime sales of one movie.
func (h *AnalyticsHandler) SalesByMovie(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.Tickets.StatsByMovie(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie_id":      id,
		"sold":          stats.Sold,
		"revenue_cents": stats.RevenueCents,
	})
}

var salesExportHeader = []string{
	"Ticket ID", "Movie", "Room", "Row", "Col",
	"Price (cents)", "Showtime Start", "Showtime End", "Issued At",
}

// ExportSales streams the tickets of a date range as an XLSX workbook.
func (h *AnalyticsHandler) ExportSales(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tickets, err := h.Tickets.ListIssuedBetween(ctx, from, to)
	if err != nil {
		return serviceError(c, err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Sales"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return serviceError(c, err)
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, headerStyle)
	}
	for i, title := range salesExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}

	for row, t := range tickets {
		values := []any{
			t.ID, t.MovieTitle, t.RoomID, t.Row, t.Col,
			t.PriceCents,
			t.ShowtimeStartsAt.Format(time.RFC3339),
			t.ShowtimeEndsAt.Format(time.RFC3339),
			t.IssuedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("sales_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	_, err = f.WriteTo(c.Response())
	return err
}
