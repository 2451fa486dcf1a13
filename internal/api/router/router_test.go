package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise/internal/appointments"
	"github.com/slotwise/slotwise/internal/jobs"
	"github.com/slotwise/slotwise/internal/notifications"
	"github.com/slotwise/slotwise/internal/users"
)

const testSecret = "router-test-secret"

type testApp struct {
	handler http.Handler
	queue   *jobs.MemoryQueue
	cleanup func()
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	userRepo := users.NewInMemoryRepository()
	userRepo.Put(&users.User{ID: 1, Name: "Cleo Client", Email: "cleo@example.com"})
	userRepo.Put(&users.User{ID: 2, Name: "Pat Provider", Email: "pat@example.com", Provider: true})

	notificationService := notifications.NewService(notifications.NewRedisStore(redisClient), userRepo, nil)

	queue := jobs.NewMemoryQueue(8)
	enqueuer := jobs.NewEnqueuer(queue, nil, nil)

	appointmentService := appointments.NewService(appointments.ServiceConfig{
		Repo:     appointments.NewInMemoryRepository(),
		Users:    userRepo,
		Notifier: notificationService,
		Enqueuer: enqueuer,
	})

	handler := New(&Config{
		AppointmentsHandler:  appointments.NewHandler(appointmentService, nil),
		NotificationsHandler: notifications.NewHandler(notificationService, nil),
		AuthSecret:           testSecret,
	})

	return &testApp{
		handler: handler,
		queue:   queue,
		cleanup: func() {
			redisClient.Close()
			mr.Close()
		},
	}
}

func bearerToken(t *testing.T, userID int64) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func (a *testApp) do(t *testing.T, method, target, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != 0 {
		req.Header.Set("Authorization", bearerToken(t, userID))
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	app := newTestApp(t)
	defer app.cleanup()

	rec := app.do(t, http.MethodGet, "/health", "", 0)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	app := newTestApp(t)
	defer app.cleanup()

	rec := app.do(t, http.MethodGet, "/appointments", "", 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingFlowThroughRouter(t *testing.T) {
	app := newTestApp(t)
	defer app.cleanup()

	date := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	body := fmt.Sprintf(`{"provider_id": 2, "date": %q}`, date.Format(time.RFC3339))

	rec := app.do(t, http.MethodPost, "/appointments", body, 1)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var appt appointments.Appointment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&appt))

	// Provider sees the booking notification.
	rec = app.do(t, http.MethodGet, "/notifications", "", 2)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []notifications.Notification
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Content, "Cleo Client")

	// Client cancels, which enqueues the mail job.
	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/appointments/%d", appt.ID), "", 1)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	messages, err := app.queue.Receive(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	payload, err := jobs.DecodeCancellation(messages[0].Body)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, payload.Appointment.ID)
	assert.Equal(t, "pat@example.com", payload.Appointment.Provider.Email)
}

func TestNotificationsRejectNonProvider(t *testing.T) {
	app := newTestApp(t)
	defer app.cleanup()

	rec := app.do(t, http.MethodGet, "/notifications", "", 1)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
