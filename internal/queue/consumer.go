// Package queue contains the background consumer that listens to the
// booking.confirmed queue and appends one line per event to the booking log.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Consumer drains booking.confirmed into a log file.
type Consumer struct {
    URL     string
    LogPath string
    Log     *logrus.Logger
}

// NewConsumer builds a consumer writing to logPath.
func NewConsumer(url, logPath string, log *logrus.Logger) *Consumer {
    if logPath == "" {
        logPath = filepath.Join("logs", "booking.log")
    }
    return &Consumer{URL: url, LogPath: logPath, Log: log}
}

// Run connects to RabbitMQ, declares the booking.confirmed queue
// (durable), and consumes messages until ctx is cancelled.  Connection
// failures are retried with exponential backoff capped at 30s; a message
// that cannot be handled is rejected without requeue so the consumer
// keeps going.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.WithError(err).Warnf("booking-consumer: dial failed; retrying in %s", backoff)
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.WithError(err).Warn("booking-consumer: consume loop ended; reconnecting")
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.WithError(err).Warn("booking-consumer: set QoS failed")
    }

    if _, err := ch.QueueDeclare(BookingQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(BookingQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handleMessage(d.Body); err != nil {
                c.Log.WithError(err).Error("booking-consumer: handle message failed")
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handleMessage(body []byte) error {
    var ev BookingConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    c.Log.WithFields(logrus.Fields{
        "show_id": ev.ShowID,
        "user_id": ev.UserID,
        "seats":   len(ev.Seats),
    }).Info("booking-consumer: booking logged")
    return nil
}

func formatLine(ev BookingConfirmedEvent) string {
    ids := make([]string, len(ev.BookingIDs))
    for i, id := range ev.BookingIDs {
        ids[i] = fmt.Sprint(id)
    }
    return fmt.Sprintf("[%s] Booking confirmed | booking_ids=[%s] | user_id=%d | user=%q | show_id=%d | movie=%q | hall=%q | show_time=%s | seats=[%s]\n",
        ev.ConfirmedAt, strings.Join(ids, ","), ev.UserID, ev.Username, ev.ShowID, ev.MovieTitle, ev.HallName, ev.ShowTime, strings.Join(ev.Seats, ","))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
