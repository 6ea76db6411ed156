package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartBoxOfficeConsumer connects to RabbitMQ, declares the ticket.issued
// and showtime.cancelled queues (durable) and consumes both, appending one
// human-readable line per event to logs/box-office.log.  It runs a
// reconnect loop with exponential backoff and keeps going through broker
// restarts; bad messages are rejected without requeue so a poison message
// cannot spin the loop.
func StartBoxOfficeConsumer() error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("box-office-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("box-office-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("box-office-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{ticketIssuedQueue, showtimeCancelledQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	issued, err := ch.Consume(ticketIssuedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ticketIssuedQueue, err)
	}
	cancelled, err := ch.Consume(showtimeCancelledQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", showtimeCancelledQueue, err)
	}

	for {
		select {
		case d, ok := <-issued:
			if !ok {
				return errors.New("ticket.issued deliveries channel closed")
			}
			ackOrReject(d, handleTicketIssued(d.Body))
		case d, ok := <-cancelled:
			if !ok {
				return errors.New("showtime.cancelled deliveries channel closed")
			}
			ackOrReject(d, handleShowtimeCancelled(d.Body))
		}
	}
}

func ackOrReject(d amqp.Delivery, err error) {
	if err != nil {
		log.Printf("box-office-consumer: handle message failed: %v", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func handleTicketIssued(body []byte) error {
	var ev TicketIssuedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Ticket issued | ticket_id=%s | movie=%q | room_id=%d | seat=(%d,%d) | price=%d cents | starts_at=%s\n",
		ev.IssuedAt, ev.TicketID, ev.MovieTitle, ev.RoomID, ev.Row, ev.Col, ev.PriceCents, ev.StartsAt)
	return appendLog(line)
}

func handleShowtimeCancelled(body []byte) error {
	var ev ShowtimeCancelledEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Showtime cancelled | showtime_id=%d | room_id=%d | movie_id=%d | starts_at=%s | tickets_voided=%d\n",
		ev.CancelledAt, ev.ShowtimeID, ev.RoomID, ev.MovieID, ev.StartsAt, ev.TicketsVoided)
	return appendLog(line)
}

func appendLog(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "box-office.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
