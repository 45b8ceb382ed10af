package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepair-system/config"
	"codepair-system/models"
	"codepair-system/security"
	"codepair-system/services"
	"codepair-system/store"
)

func setupQueueHandler() (*QueueHandler, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	cfg := &config.Config{RoomSize: 4, QueuePositionUpdate: 2 * time.Second}
	service := services.NewQueueService(store.NewRedisQueueStore(db), services.NopNotifier{}, cfg)
	return NewQueueHandler(service), mock
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestEnqueueHandler(t *testing.T) {
	handler, mock := setupQueueHandler()

	entry, err := json.Marshal(models.WaitingUser{UserID: "u1", Domain: "dsa", RoomType: "easy"})
	require.NoError(t, err)
	mock.ExpectLRange("queue:dsa:easy", 0, -1).SetVal([]string{})
	mock.ExpectRPush("queue:dsa:easy", entry).SetVal(1)
	mock.ExpectLLen("queue:dsa:easy").SetVal(1)

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/api/v1/queue/enqueue", `{"domain":"dsa","room_type":"easy"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(security.ContextUserIDKey, "u1")

	require.NoError(t, handler.Enqueue(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["accepted"])
	assert.Equal(t, float64(1), resp["queue_length"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueueHandler_Unauthenticated(t *testing.T) {
	handler, _ := setupQueueHandler()

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/api/v1/queue/enqueue", `{"domain":"dsa"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Enqueue(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestEnqueueHandler_MissingDomain(t *testing.T) {
	handler, _ := setupQueueHandler()

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/api/v1/queue/enqueue", `{"room_type":"easy"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(security.ContextUserIDKey, "u1")

	err := handler.Enqueue(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestLengthHandler(t *testing.T) {
	handler, mock := setupQueueHandler()

	mock.ExpectLLen("queue:dsa:easy").SetVal(3)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/length?domain=dsa&room_type=easy", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.Length(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["queue_length"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionHandler(t *testing.T) {
	handler, mock := setupQueueHandler()

	mock.ExpectGet("queue:position:dsa:easy:u1").SetVal("2")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/position?domain=dsa&room_type=easy", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(security.ContextUserIDKey, "u1")

	require.NoError(t, handler.Position(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["position"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveHandler_NotQueued(t *testing.T) {
	handler, mock := setupQueueHandler()

	mock.ExpectLRange("queue:dsa:easy", 0, -1).SetVal([]string{})

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/api/v1/queue/leave", `{"domain":"dsa","room_type":"easy"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(security.ContextUserIDKey, "u1")

	err := handler.Leave(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
