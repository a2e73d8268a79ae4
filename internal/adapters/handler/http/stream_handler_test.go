package http

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/setvote/api/internal/adapters/notifier/memory"
	"github.com/setvote/api/internal/core/ports"
)

func newStreamServer(t *testing.T, hub *memory.Hub) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	handler := NewStreamHandler(hub, discardLogger())
	r.Get("/api/setlists/{id}/stream", handler.Stream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// readEvent reads one "event:"/"data:" pair, skipping blank separator lines.
func readEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
			return event, data
		}
	}
}

func TestStreamDeliversCountEvents(t *testing.T) {
	hub := memory.NewHub(4)
	srv := newStreamServer(t, hub)
	setlistID := uuid.New()
	songID := uuid.New()

	resp, err := http.Get(srv.URL + "/api/setlists/" + setlistID.String() + "/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	event, _ := readEvent(t, reader)
	require.Equal(t, "ready", event, "stream opens with a refresh hint")

	// The subscription is live once "ready" was written.
	hub.Publish(ports.CountUpdate{SetlistID: setlistID, SongID: songID, VoteCount: 4})

	event, data := readEvent(t, reader)
	require.Equal(t, "count", event)

	var update ports.CountUpdate
	require.NoError(t, json.Unmarshal([]byte(data), &update))
	assert.Equal(t, songID, update.SongID)
	assert.Equal(t, int64(4), update.VoteCount)
}

func TestStreamUnsubscribesOnDisconnect(t *testing.T) {
	hub := memory.NewHub(4)
	srv := newStreamServer(t, hub)
	setlistID := uuid.New()

	resp, err := http.Get(srv.URL + "/api/setlists/" + setlistID.String() + "/stream")
	require.NoError(t, err)

	reader := bufio.NewReader(resp.Body)
	event, _ := readEvent(t, reader)
	require.Equal(t, "ready", event)
	require.Equal(t, 1, hub.SubscriberCount(setlistID))

	resp.Body.Close()

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(setlistID) == 0
	}, 2*time.Second, 10*time.Millisecond, "handler must unsubscribe when the client goes away")
}

func TestStreamInvalidSetlistID(t *testing.T) {
	hub := memory.NewHub(4)
	srv := newStreamServer(t, hub)

	resp, err := http.Get(srv.URL + "/api/setlists/not-a-uuid/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
