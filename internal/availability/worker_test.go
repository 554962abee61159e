package availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"venuehouse/internal/domain"
	"venuehouse/internal/events"
)

type MockHoldSource struct {
	mock.Mock
}

func (m *MockHoldSource) ListByResource(ctx context.Context, resourceID int64) ([]domain.ResourceHold, error) {
	args := m.Called(ctx, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ResourceHold), args.Error(1)
}

type MockResourceSource struct {
	mock.Mock
}

func (m *MockResourceSource) List(ctx context.Context) ([]domain.Resource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Resource), args.Error(1)
}

func TestPushResource_SendsFullSnapshot(t *testing.T) {
	var got resourceSnapshot
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	holds := new(MockHoldSource)
	holds.On("ListByResource", mock.Anything, int64(3)).Return([]domain.ResourceHold{
		{RequestID: 1, ResourceID: 3, Kind: domain.HoldProspect, StartDate: start},
	}, nil)

	w := NewWorker(srv.URL, time.Second, holds, new(MockResourceSource))
	require.NoError(t, w.pushResource(context.Background(), 3))

	assert.Equal(t, int64(3), got.ResourceID)
	require.Len(t, got.Holds, 1)
	assert.Equal(t, "prospect", got.Holds[0].Kind)
	assert.Equal(t, int64(1), got.Holds[0].RequestID)
}

func TestHandle_FailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	holds := new(MockHoldSource)
	holds.On("ListByResource", mock.Anything, int64(3)).Return([]domain.ResourceHold{}, nil)

	w := NewWorker(srv.URL, time.Second, holds, new(MockResourceSource))
	// Must not panic or propagate anything.
	w.handle(context.Background(), events.Event{Type: events.EventHoldCreated, RequestID: 1, ResourceID: 3})
}

func TestHandle_IgnoresEventsWithoutResource(t *testing.T) {
	holds := new(MockHoldSource)
	w := NewWorker("http://calendar.invalid/sync", time.Second, holds, new(MockResourceSource))

	w.handle(context.Background(), events.Event{Type: events.EventStatusChanged, RequestID: 1})
	holds.AssertNotCalled(t, "ListByResource", mock.Anything, mock.Anything)
}

func TestResync_ReportsFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	holds := new(MockHoldSource)
	holds.On("ListByResource", mock.Anything, mock.Anything).Return([]domain.ResourceHold{}, nil)
	resources := new(MockResourceSource)
	resources.On("List", mock.Anything).Return([]domain.Resource{{ID: 1}, {ID: 2}}, nil)

	w := NewWorker(srv.URL, time.Second, holds, resources)
	err := w.Resync(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}
