package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/photoalbum/internal/app/jobs"
	"github.com/yigit/photoalbum/internal/app/models"
)

func newTestServer(t *testing.T, registry *jobs.Registry) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(registryLookup{registry}, 10*time.Millisecond, zerolog.Nop())
	router.GET("/scans/:id/stream", h.HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type registryLookup struct {
	r *jobs.Registry
}

func (l registryLookup) GetScan(id string) (*jobs.Job, error) { return l.r.Get(id) }

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestHandleConnection_StreamsUntilJobFinishes(t *testing.T) {
	registry := jobs.NewRegistry(time.Hour)
	srv := newTestServer(t, registry)

	release := make(chan struct{})
	reported := make(chan struct{})
	job := registry.Start("/photos", func(ctx context.Context, j *jobs.Job) (*models.ScanOutcome, error) {
		j.Report(models.ScanOutcome{Dir: "/photos", Found: 3, Matched: 2})
		close(reported)
		<-release
		return &models.ScanOutcome{Dir: "/photos", Found: 5, Matched: 4}, nil
	})
	<-reported

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/scans/"+job.ID+"/stream"), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first jobs.Status
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &first))
	assert.Equal(t, jobs.StateRunning, first.State)
	assert.Equal(t, 3, first.Progress.Found)

	close(release)

	var last jobs.Status
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
			var ce *websocket.CloseError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, string(jobs.StateCompleted), ce.Text)
			break
		}
		require.NoError(t, json.Unmarshal(payload, &last))
	}
	assert.Equal(t, jobs.StateCompleted, last.State)
	assert.Equal(t, 4, last.Progress.Matched)
}

func TestHandleConnection_FinishedJobClosesImmediately(t *testing.T) {
	registry := jobs.NewRegistry(time.Hour)
	srv := newTestServer(t, registry)

	job := registry.Start("/photos", func(ctx context.Context, _ *jobs.Job) (*models.ScanOutcome, error) {
		return &models.ScanOutcome{Dir: "/photos", Found: 1}, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := job.Wait(ctx)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/scans/"+job.ID+"/stream"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var st jobs.Status
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &st))
	assert.Equal(t, jobs.StateCompleted, st.State)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestHandleConnection_UnknownJob(t *testing.T) {
	srv := newTestServer(t, jobs.NewRegistry(time.Hour))

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/scans/missing/stream"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
