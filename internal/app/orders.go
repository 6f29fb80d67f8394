package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"ratecompass/internal/adapters/observability"
	"ratecompass/internal/domain"
)

type OrderService struct {
	store     domain.ConfigStore
	subs      domain.SubmissionLog
	newClient domain.ClientFactory
}

func NewOrderService(store domain.ConfigStore, subs domain.SubmissionLog, f domain.ClientFactory) *OrderService {
	return &OrderService{store: store, subs: subs, newClient: f}
}

// OrderValidated posts a freshly validated order so RateCompass can ask the
// customer for reviews. Client errors are returned unchanged.
func (s *OrderService) OrderValidated(ctx context.Context, o domain.Order) (map[string]any, error) {
	cl, st, err := configuredClient(ctx, s.store, s.newClient)
	if err != nil {
		return nil, err
	}

	payload := orderPayload(o)
	log.Info().
		Int64("order_id", o.ID).
		Str("order_number", o.Reference).
		Int("review_items", len(o.Lines)).
		Msg("sending order to ratecompass")

	return s.submit(ctx, cl, st.CompassID, o.ID, o.Reference, payload)
}

type ResubmitReport struct {
	Attempted int
	Sent      int
	Failed    int
}

// Resubmit re-posts up to limit failed submissions with at most workers
// requests in flight. Every attempt is recorded again.
func (s *OrderService) Resubmit(ctx context.Context, limit, workers int) (ResubmitReport, error) {
	if workers <= 0 {
		workers = 1
	}
	cl, st, err := configuredClient(ctx, s.store, s.newClient)
	if err != nil {
		return ResubmitReport{}, err
	}
	failed, err := s.subs.ListFailedSubmissions(ctx, limit)
	if err != nil {
		return ResubmitReport{}, fmt.Errorf("list failed submissions: %w", err)
	}

	var sent, bad atomic.Int32
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for _, sub := range failed {
		sub := sub

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return report(len(failed), &sent, &bad), err
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			var payload map[string]any
			if err := json.Unmarshal(sub.Payload, &payload); err != nil {
				log.Warn().Int64("order_id", sub.OrderID).Err(err).Msg("stored payload unreadable")
				bad.Add(1)
				return
			}
			if _, err := s.submit(ctx, cl, st.CompassID, sub.OrderID, sub.OrderNumber, payload); err != nil {
				log.Warn().Int64("order_id", sub.OrderID).Err(err).Msg("resubmit failed")
				bad.Add(1)
				return
			}
			sent.Add(1)
		}()
	}

	wg.Wait()
	return report(len(failed), &sent, &bad), nil
}

func report(n int, sent, bad *atomic.Int32) ResubmitReport {
	return ResubmitReport{Attempted: n, Sent: int(sent.Load()), Failed: int(bad.Load())}
}

func (s *OrderService) submit(ctx context.Context, cl domain.RateCompassClient, compassID string, orderID int64, number string, payload map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order %d: %w", orderID, err)
	}
	sub := domain.Submission{OrderID: orderID, OrderNumber: number, Payload: raw}

	out, perr := cl.PostOrder(ctx, compassID, payload)
	if perr != nil {
		sub.Status = domain.SubmissionFailed
		msg := perr.Error()
		sub.Error = &msg
		// only API errors carry a status; transport and decode errors do not
		var se interface{ HTTPStatus() int }
		if errors.As(perr, &se) {
			code := se.HTTPStatus()
			sub.HTTPStatus = &code
		}
	} else {
		sub.Status = domain.SubmissionSent
	}
	observability.ObserveSubmission(perr == nil)

	if err := s.subs.RecordSubmission(ctx, sub); err != nil {
		// the post itself already happened; surface both
		log.Error().Err(err).Int64("order_id", orderID).Msg("record submission failed")
		if perr == nil {
			return out, fmt.Errorf("record submission for %d: %w", orderID, err)
		}
	}
	return out, perr
}
