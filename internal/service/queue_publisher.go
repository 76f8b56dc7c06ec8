// Package service holds application services that sit between handlers
// and repositories: the catalog, which adds caching over the movie, hall
// and show repositories, and the publisher of domain events to RabbitMQ.
package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"

    q "github.com/iliyamo/cinemaflow/internal/queue"
)

// EventPublisher sends booking confirmations downstream.  Callers treat
// publishing as best effort: an error is logged, never surfaced to the
// user whose booking already committed.
type EventPublisher interface {
    PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) PublishBookingConfirmed(context.Context, q.BookingConfirmedEvent) error {
    return nil
}

// RabbitPublisher publishes to the booking.confirmed queue on the
// default exchange.  Each call opens its own connection.
type RabbitPublisher struct {
    URL string
    Log *logrus.Logger
}

// NewRabbitPublisher returns a publisher dialing url.
func NewRabbitPublisher(url string, log *logrus.Logger) *RabbitPublisher {
    return &RabbitPublisher{URL: url, Log: log}
}

// PublishBookingConfirmed publishes a BookingConfirmedEvent to the
// "booking.confirmed" queue. The function attempts to be robust and
// to never panic; any error is logged and returned so the caller can
// choose to ignore it. Messages are marked as persistent.
func (p *RabbitPublisher) PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error {
    log := p.Log.WithField("show_id", event.ShowID)

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.WithError(err).Warn("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.WithError(err).Warn("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        q.BookingQueueName, // name
        true,               // durable
        false,              // autoDelete
        false,              // exclusive
        false,              // noWait
        nil,                // args
    ); err != nil {
        log.WithError(err).Warn("rabbitmq: queue declare failed")
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.WithError(err).Warn("rabbitmq: marshal event failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                 // default exchange
        q.BookingQueueName, // routing key = queue name
        false,              // mandatory
        false,              // immediate
        pub,
    ); err != nil {
        log.WithError(err).Warn("rabbitmq: publish failed")
        return err
    }

    return nil
}
