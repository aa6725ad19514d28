package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/coach_bot/internal/model"
)

var buenosAires = time.FixedZone("ART", -3*60*60)

type observation struct {
	method   string
	endpoint string
	status   int
}

type stubObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *stubObserver) ObserveAPIRequest(method, endpoint string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{method: method, endpoint: endpoint, status: status})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *stubObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	observer := &stubObserver{}
	client := New(srv.URL+"/", 5*time.Second, nil, WithLocation(buenosAires), WithObserver(observer))
	return client, observer
}

func TestLoginSendsCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "coach@example.com", body["email"])
		assert.Equal(t, "secret", body["password"])

		_, _ = w.Write([]byte(`{"token":"tok","coach":{"id":"c1","email":"coach@example.com","name":"Ana"}}`))
	})

	res, err := client.Login(context.Background(), "coach@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, "Ana", res.Coach.Name)
}

func TestErrorMessageFromBody(t *testing.T) {
	client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"email already registered"}`))
	})

	_, err := client.Register(context.Background(), "a@b.c", "pw", "Ana", "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "email already registered", apiErr.Message)

	require.Len(t, observer.seen, 1)
	assert.Equal(t, observation{method: http.MethodPost, endpoint: "/auth/register", status: http.StatusConflict}, observer.seen[0])
}

func TestErrorMessageFallback(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.ListStudents(context.Background(), "tok")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP 502", apiErr.Message)
}

func TestUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetProfile(context.Background(), "expired")
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
}

func TestListLessonsResolvesVariants(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lessons", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-06-03T03:00:00Z", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-06-10T03:00:00Z", r.URL.Query().Get("to"))

		_, _ = w.Write([]byte(`[
			{"id":"l1","studentId":"s1","student":{"name":"Lucia"},"start":"2024-06-03T13:00:00Z","end":"2024-06-03T14:00:00Z","status":"scheduled"},
			{"id":"l2","type":"group","participants":[{"studentId":"s2","price":8000},{"studentId":"s3","price":9000}],"start":"2024-06-04T21:00:00.000Z","end":"2024-06-04T22:30:00.000Z","paymentStatus":"partial"}
		]`))
	})

	from := time.Date(2024, 6, 3, 0, 0, 0, 0, buenosAires)
	lessons, err := client.ListLessons(context.Background(), "tok", from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, lessons, 2)

	private := lessons[0]
	assert.Equal(t, model.LessonTypePrivate, private.Type())
	assert.Equal(t, model.PrivateAttendee{StudentID: "s1"}, private.Attendees)
	assert.Equal(t, "Lucia", private.StudentName)
	assert.Equal(t, 10, private.Start.Hour())
	assert.Equal(t, buenosAires, private.Start.Location())
	assert.Equal(t, model.PaymentStatusUnpaid, private.PaymentStatus)

	group := lessons[1]
	assert.Equal(t, model.LessonTypeGroup, group.Type())
	assert.Equal(t, []string{"s2", "s3"}, group.Attendees.StudentIDs())
	assert.Equal(t, model.LessonStatusScheduled, group.Status)
	assert.Equal(t, 90, group.DurationMinutes())
	assert.Equal(t, 18, group.Start.Hour())
}

func TestListLessonsUnknownType(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"l1","type":"clinic","start":"2024-06-03T13:00:00Z","end":"2024-06-03T14:00:00Z"}]`))
	})

	_, err := client.ListLessons(context.Background(), "tok", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestCreateLessonPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "group", body["type"])
		assert.Equal(t, "2024-06-03T13:00:00Z", body["start"])
		assert.Len(t, body["participants"], 2)
		assert.NotContains(t, body, "studentId")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"new"}`))
	})

	draft := model.LessonDraft{
		Start: time.Date(2024, 6, 3, 10, 0, 0, 0, buenosAires),
		End:   time.Date(2024, 6, 3, 11, 0, 0, 0, buenosAires),
		Attendees: model.GroupAttendees{Participants: []model.Participant{
			{StudentID: "s1", Price: 1},
			{StudentID: "s2", Price: 2},
		}},
	}

	id, err := client.CreateLesson(context.Background(), "tok", draft)
	require.NoError(t, err)
	assert.Equal(t, "new", id)
}

func TestUpdateAndDeleteUseIDEndpoint(t *testing.T) {
	client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lessons/abc", r.URL.Path)
		if r.Method == http.MethodPatch {
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]any{"status": "completed"}, body)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	status := model.LessonStatusCompleted
	require.NoError(t, client.UpdateLesson(context.Background(), "tok", "abc", model.LessonUpdate{Status: &status}))
	require.NoError(t, client.DeleteLesson(context.Background(), "tok", "abc"))

	require.Len(t, observer.seen, 2)
	for _, o := range observer.seen {
		assert.Equal(t, "/lessons/:id", o.endpoint)
		assert.Equal(t, http.StatusNoContent, o.status)
	}
}

func TestPayments(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "s1", r.URL.Query().Get("studentId"))
			_, _ = w.Write([]byte(`[{"id":"p1","studentId":"s1","amount":100,"currency":"ARS","method":"cash","status":"completed","date":"2024-06-03T13:00:00Z"}]`))
		case http.MethodPost:
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "mp", body["method"])
			_, _ = w.Write([]byte(`{"id":"p2"}`))
		}
	})

	payments, err := client.ListPayments(context.Background(), "tok", "s1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, model.PaymentMethodCash, payments[0].Method)
	assert.Equal(t, 10, payments[0].Date.Hour())

	id, err := client.CreatePayment(context.Background(), "tok", model.PaymentInput{
		StudentID: "s1",
		Amount:    50,
		Currency:  "ARS",
		Method:    model.PaymentMethodMP,
		Status:    model.PaymentRecordCompleted,
		Date:      time.Date(2024, 6, 3, 10, 0, 0, 0, buenosAires),
	})
	require.NoError(t, err)
	assert.Equal(t, "p2", id)
}

func TestHealth(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	ok, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
