package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/iliyamo/cinema-ticketing/internal/repository"
)

// TicketPDF renders a printable ticket with a QR code of the ticket id.
func (h *BookingHandler) TicketPDF(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	ticket, err := h.Tickets.Get(ctx, c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}

	pdfBytes, err := renderTicketPDF(ticket)
	if err != nil {
		return serviceError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "ticket_"+ticket.ID+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

func renderTicketPDF(t *repository.Ticket) ([]byte, error) {
	qrPNG, err := qrcode.Encode(t.ID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 12, "Cinema Ticket")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, t.MovieTitle)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Showtime", t.ShowtimeStartsAt.Format("Mon, 02 Jan 2006 15:04 MST")},
		{"Ends", t.ShowtimeEndsAt.Format("15:04 MST")},
		{"Room", fmt.Sprintf("%d", t.RoomID)},
		{"Seat", fmt.Sprintf("row %d, seat %d", t.Row, t.Col)},
		{"Price", fmt.Sprintf("%d.%02d", t.PriceCents/100, t.PriceCents%100)},
		{"Issued", t.IssuedAt.Format(time.RFC3339)},
		{"Ticket ID", t.ID},
	}
	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(30, 7, r[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, r[1], "", 1, "L", false, 0, "")
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("ticket-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("ticket-qr", 150, 30, 45, 45, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf render: %w", err)
	}
	return buf.Bytes(), nil
}
