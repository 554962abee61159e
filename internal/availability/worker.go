package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"venuehouse/internal/domain"
	"venuehouse/internal/events"
	"venuehouse/internal/logger"
)

// HoldSource provides the hold rows the external calendar mirrors.
type HoldSource interface {
	ListByResource(ctx context.Context, resourceID int64) ([]domain.ResourceHold, error)
}

// ResourceSource enumerates the resources to resync.
type ResourceSource interface {
	List(ctx context.Context) ([]domain.Resource, error)
}

// Worker pushes availability changes to the external calendar service.
// Deliveries are fire-and-forget: a failed push is logged and the
// nightly resync repairs whatever was missed. Nothing here ever
// surfaces an error back into a lifecycle operation.
type Worker struct {
	syncURL   string
	client    *http.Client
	holds     HoldSource
	resources ResourceSource
}

func NewWorker(syncURL string, timeout time.Duration, holds HoldSource, resources ResourceSource) *Worker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Worker{
		syncURL:   syncURL,
		client:    &http.Client{Timeout: timeout},
		holds:     holds,
		resources: resources,
	}
}

// Run consumes bus events until the channel closes. Intended to run in
// its own goroutine.
func (w *Worker) Run(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			w.handle(ctx, e)
		}
	}
}

func (w *Worker) handle(ctx context.Context, e events.Event) {
	if e.ResourceID == 0 {
		return
	}
	if err := w.pushResource(ctx, e.ResourceID); err != nil {
		logger.Warn("availability push failed, nightly resync will repair",
			"resource_id", e.ResourceID, "trigger", string(e.Type), "error", err)
	}
}

// resourceSnapshot is the wire shape the calendar service ingests: the
// complete current hold set for one resource. Sending state instead of
// deltas makes redelivery and resync the same operation.
type resourceSnapshot struct {
	ResourceID int64        `json:"resource_id"`
	Holds      []holdWindow `json:"holds"`
	SyncedAt   time.Time    `json:"synced_at"`
}

type holdWindow struct {
	RequestID int64      `json:"request_id"`
	Kind      string     `json:"kind"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func (w *Worker) pushResource(ctx context.Context, resourceID int64) error {
	if w.syncURL == "" {
		return nil
	}

	holds, err := w.holds.ListByResource(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("list holds: %w", err)
	}

	snap := resourceSnapshot{
		ResourceID: resourceID,
		Holds:      make([]holdWindow, 0, len(holds)),
		SyncedAt:   time.Now().UTC(),
	}
	for _, h := range holds {
		snap.Holds = append(snap.Holds, holdWindow{
			RequestID: h.RequestID,
			Kind:      string(h.Kind),
			StartDate: h.StartDate,
			EndDate:   h.EndDate,
		})
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.syncURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("calendar service returned %d", resp.StatusCode)
	}
	return nil
}

// Resync pushes a snapshot for every resource. Scheduled nightly; also
// usable as a manual repair via the ops CLI.
func (w *Worker) Resync(ctx context.Context) error {
	resources, err := w.resources.List(ctx)
	if err != nil {
		return fmt.Errorf("list resources: %w", err)
	}

	var failed int
	for _, res := range resources {
		if err := w.pushResource(ctx, res.ID); err != nil {
			failed++
			logger.Warn("resync push failed", "resource_id", res.ID, "error", err)
		}
	}
	logger.Info("availability resync finished", "resources", len(resources), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d resource pushes failed", failed, len(resources))
	}
	return nil
}
