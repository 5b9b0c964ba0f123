package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/basket/internal/events"
)

// serveStream runs the handler until the request context expires and
// returns everything written to the stream.
func serveStream(t *testing.T, handler *EventsStreamHandler, target string, publish func(bus *events.Bus)) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	if publish != nil {
		go func() {
			time.Sleep(50 * time.Millisecond)
			publish(handler.eventBus)
		}()
	}

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	return rec.Body.String()
}

func TestEventsStream_SendsConnectedMessage(t *testing.T) {
	logger := zerolog.Nop()
	handler := NewEventsStreamHandler(events.NewBus(logger), logger)

	body := serveStream(t, handler, "/api/events/stream", nil)

	assert.True(t, strings.HasPrefix(body, "data: "))
	assert.Contains(t, body, `"type":"connected"`)
}

func TestEventsStream_ForwardsPublishedEvents(t *testing.T) {
	logger := zerolog.Nop()
	handler := NewEventsStreamHandler(events.NewBus(logger), logger)

	body := serveStream(t, handler, "/api/events/stream", func(bus *events.Bus) {
		bus.Publish("groups", &events.GroupsChangedData{
			Action:  "created",
			GroupID: "g1",
			Name:    "Tech",
		})
	})

	assert.Contains(t, body, `"type":"groups.changed"`)
	assert.Contains(t, body, `"action":"created"`)
	assert.Contains(t, body, `"name":"Tech"`)
}

func TestEventsStream_TypesFilter(t *testing.T) {
	logger := zerolog.Nop()
	handler := NewEventsStreamHandler(events.NewBus(logger), logger)

	body := serveStream(t, handler, "/api/events/stream?types=reorder.settled", func(bus *events.Bus) {
		bus.Publish("groups", &events.GroupsChangedData{Action: "created", GroupID: "g1"})
		bus.Publish("reorder", &events.ReorderSettledData{DisplayOrder: []string{"g1", "unassigned"}})
	})

	assert.Contains(t, body, `"type":"reorder.settled"`)
	assert.NotContains(t, body, `"type":"groups.changed"`)
}

func TestEventsStream_RejectsNonGET(t *testing.T) {
	logger := zerolog.Nop()
	handler := NewEventsStreamHandler(events.NewBus(logger), logger)

	req := httptest.NewRequest(http.MethodPost, "/api/events/stream", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
