// Package publisher drains the transactional outbox to kafka and sweeps
// abandoned checkout sessions.
package publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/domain"
	r "github.com/RSProlipsiOficial/rs-ecosistem-sub010/internal/repository"
)

type OutboxPoller struct {
	eventTick    time.Duration
	abandonTick  time.Duration
	abandonAfter time.Duration
	repo         r.RepoInterface
	writer       *kafka.Writer
}

func NewOutboxPoller(repo r.RepoInterface, abandonAfter time.Duration, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "checkout-outbox",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{time.Second, time.Minute, abandonAfter, repo, w}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	abandonTicker := time.NewTicker(p.abandonTick)
	defer eventTicker.Stop()
	defer abandonTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-abandonTicker.C:
			p.sweepAbandoned(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch events %v", err)
		return
	}

	for _, event := range events {
		errPublish := p.publishToKafka(ctx, event)
		if errPublish != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, errPublish)
			continue
		}

		errMark := p.repo.MarkEventAsProcessed(ctx, event.ID)
		if errMark != nil {
			log.Printf("failed to mark event as processed id = %v with error %v", event.ID, errMark)
			continue
		}
	}
}

// sweepAbandoned expires ACTIVE sessions nobody touched within the
// abandonment window. Authorized splits are left alone here; refunds
// go through the cancel path, a sweep only records the walk-away.
func (p *OutboxPoller) sweepAbandoned(ctx context.Context) {
	cutoff := time.Now().Add(-p.abandonAfter)
	checkouts, err := p.repo.GetStaleActiveCheckouts(ctx, cutoff, 100)
	if err != nil {
		log.Printf("failed to get stale checkouts: %v", err)
		return
	}

	for _, checkout := range checkouts {
		log.Printf("abandoning stale checkout: %v", checkout.ID)

		checkout.Status = domain.CheckoutStatusAbandoned
		checkout.Generation++
		checkout.UpdatedAt = time.Now()

		if err := p.repo.SaveCheckout(ctx, checkout); err != nil {
			log.Printf("failed to abandon checkout %v: %v", checkout.ID, err)
			continue
		}

		payload, err := json.Marshal(map[string]interface{}{
			"checkout_id":  checkout.ID,
			"cart_id":      checkout.CartID,
			"user_id":      checkout.UserID,
			"last_step":    checkout.Step,
			"abandoned_at": checkout.UpdatedAt,
		})
		if err != nil {
			log.Printf("failed to marshal abandonment payload: %v", err)
			continue
		}

		if err := p.repo.InsertEvent(ctx, checkout.ID, "checkout.abandoned", payload); err != nil {
			log.Printf("failed to record abandonment event for %v: %v", checkout.ID, err)
		}
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *r.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateId), // checkout_id for ordering
		Value: event.Payload,             // Already JSON from database
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	err := p.writer.WriteMessages(ctx, msg)
	return err
}
