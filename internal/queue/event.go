// Package queue defines the box-office events exchanged over the message
// broker and the background consumer that records them.
package queue

// TicketIssuedEvent is published after a seat purchase completes.  It
// carries everything a downstream consumer needs without querying the
// primary database.
type TicketIssuedEvent struct {
	TicketID   string `json:"ticket_id"`
	MovieID    uint64 `json:"movie_id"`
	MovieTitle string `json:"movie_title"`
	RoomID     uint64 `json:"room_id"`
	Row        uint32 `json:"row"`
	Col        uint32 `json:"col"`
	PriceCents uint32 `json:"price_cents"`
	StartsAt   string `json:"starts_at"`
	EndsAt     string `json:"ends_at"`
	IssuedAt   string `json:"issued_at"`
}

// ShowtimeCancelledEvent is published when an admin cancels a showtime.
// TicketsVoided is zero when the cancellation happened after start and
// issued tickets were kept.
type ShowtimeCancelledEvent struct {
	ShowtimeID    uint64 `json:"showtime_id"`
	RoomID        uint64 `json:"room_id"`
	MovieID       uint64 `json:"movie_id"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	TicketsVoided int64  `json:"tickets_voided"`
	CancelledAt   string `json:"cancelled_at"`
}
