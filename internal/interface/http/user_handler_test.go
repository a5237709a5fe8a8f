package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/users-service/internal/application"
	"github.com/oksasatya/users-service/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type createFn func(context.Context, application.CreateUserCommand) (application.Result[uuid.UUID], error)
type getFn func(context.Context, application.GetUserByIDQuery) (application.Result[application.UserDTO], error)

func newRouter(t *testing.T, create createFn, get getFn) *gin.Engine {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bus := application.NewBus(logger)
	if create != nil {
		application.MustRegister[application.CreateUserCommand, uuid.UUID](bus, application.HandlerFunc[application.CreateUserCommand, uuid.UUID](create))
	}
	if get != nil {
		application.MustRegister[application.GetUserByIDQuery, application.UserDTO](bus, application.HandlerFunc[application.GetUserByIDQuery, application.UserDTO](get))
	}
	h := NewUserHandler(bus, logger)
	r := gin.New()
	r.POST("/api/users", h.Create)
	r.GET("/api/users/:id", h.GetByID)
	return r
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return w, env
}

const aliceBody = `{"username":"alice","email":"Alice@Example.com","firstName":"Alice","lastName":"Smith","dateOfBirth":"1990-05-17"}`

func TestCreateUserCreated(t *testing.T) {
	id := uuid.New()
	var got application.CreateUserCommand
	r := newRouter(t, func(_ context.Context, cmd application.CreateUserCommand) (application.Result[uuid.UUID], error) {
		got = cmd
		return application.Success(id), nil
	}, nil)

	w, env := do(t, r, http.MethodPost, "/api/users", aliceBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var data createUserResponse
	if err := json.Unmarshal(env.Data, &data); err != nil || data.ID != id.String() {
		t.Fatalf("data = %s", env.Data)
	}
	if w.Header().Get("Location") != "/api/users/"+id.String() {
		t.Fatalf("Location = %q", w.Header().Get("Location"))
	}
	if got.Username != "alice" || got.Email != "Alice@Example.com" || !got.DateOfBirth.Equal(time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("command = %+v", got)
	}
}

func TestCreateUserAcceptsRFC3339Date(t *testing.T) {
	var got time.Time
	r := newRouter(t, func(_ context.Context, cmd application.CreateUserCommand) (application.Result[uuid.UUID], error) {
		got = cmd.DateOfBirth
		return application.Success(uuid.New()), nil
	}, nil)
	body := strings.Replace(aliceBody, `"1990-05-17"`, `"1990-05-17T08:30:00Z"`, 1)
	if w, _ := do(t, r, http.MethodPost, "/api/users", body); w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if got.Hour() != 8 {
		t.Fatalf("dob = %v", got)
	}
}

func TestCreateUserStatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		result  application.Result[uuid.UUID]
		err     error
		status  int
		message string
	}{
		{"validation", application.Failure[uuid.UUID](application.Validation("email", "Invalid email format")), nil, http.StatusBadRequest, "Invalid email format"},
		{"conflict", application.Failure[uuid.UUID](application.Conflict(application.MsgUsernameExists)), nil, http.StatusConflict, "Username already exists"},
		{"persistence", application.Result[uuid.UUID]{}, &application.PersistenceError{Op: "save changes", Err: errors.New("connection reset")}, http.StatusInternalServerError, "An error occurred processing your request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(t, func(context.Context, application.CreateUserCommand) (application.Result[uuid.UUID], error) {
				return tc.result, tc.err
			}, nil)
			w, env := do(t, r, http.MethodPost, "/api/users", aliceBody)
			if w.Code != tc.status || env.Message != tc.message || env.Success {
				t.Fatalf("got %d %q, want %d %q", w.Code, env.Message, tc.status, tc.message)
			}
			if strings.Contains(w.Body.String(), "connection reset") {
				t.Fatal("internal cause leaked to the client")
			}
		})
	}
}

func TestCreateUserBindingErrors(t *testing.T) {
	called := false
	r := newRouter(t, func(context.Context, application.CreateUserCommand) (application.Result[uuid.UUID], error) {
		called = true
		return application.Success(uuid.New()), nil
	}, nil)

	cases := map[string]struct {
		body  string
		field string
	}{
		"missing username": {`{"email":"a@b.co","firstName":"A","lastName":"B","dateOfBirth":"1990-01-01"}`, "username"},
		"long username":    {strings.Replace(aliceBody, `"alice"`, `"`+strings.Repeat("a", 51)+`"`, 1), "username"},
		"bad date":         {strings.Replace(aliceBody, `"1990-05-17"`, `"17/05/1990"`, 1), "dateOfBirth"},
		"broken json":      {`{"username":`, "payload"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w, env := do(t, r, http.MethodPost, "/api/users", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
			if _, ok := env.Error[tc.field]; !ok {
				t.Fatalf("details = %v, want key %q", env.Error, tc.field)
			}
		})
	}
	if called {
		t.Fatal("handler must not run for rejected payloads")
	}
}

func TestGetUserByID(t *testing.T) {
	id := uuid.New()
	dto := application.UserDTO{
		ID:       id.String(),
		Username: "alice",
		Email:    "alice@example.com",
		Profile:  application.ProfileDTO{FirstName: "Alice", LastName: "Smith", DateOfBirth: "1990-05-17"},
	}
	r := newRouter(t, nil, func(_ context.Context, q application.GetUserByIDQuery) (application.Result[application.UserDTO], error) {
		if q.ID != id {
			return application.Failure[application.UserDTO](application.NotFound(application.MsgUserNotFound)), nil
		}
		return application.Success(dto), nil
	})

	w, env := do(t, r, http.MethodGet, "/api/users/"+id.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got application.UserDTO
	if err := json.Unmarshal(env.Data, &got); err != nil || got != dto {
		t.Fatalf("data = %s", env.Data)
	}
	if !strings.Contains(string(env.Data), `"dateOfBirth":"1990-05-17"`) {
		t.Fatalf("projection shape: %s", env.Data)
	}

	w, env = do(t, r, http.MethodGet, "/api/users/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound || env.Message != "User not found" {
		t.Fatalf("miss: %d %q", w.Code, env.Message)
	}

	w, _ = do(t, r, http.MethodGet, "/api/users/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: %d", w.Code)
	}
}

func TestUnregisteredHandlerIs500(t *testing.T) {
	r := newRouter(t, nil, nil)
	w, env := do(t, r, http.MethodGet, "/api/users/"+uuid.NewString(), "")
	if w.Code != http.StatusInternalServerError || env.Message != "An error occurred processing your request" {
		t.Fatalf("got %d %q", w.Code, env.Message)
	}
}
