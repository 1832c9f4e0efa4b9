package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contoso-university-api/internal/repository"
	"github.com/noah-isme/contoso-university-api/internal/seed"
	"github.com/noah-isme/contoso-university-api/internal/service"
)

type unitOfWorkFactory interface {
	Begin() repository.UnitOfWork
}

type brokenStore struct {
	inner unitOfWorkFactory
}

func (b brokenStore) Begin() repository.UnitOfWork {
	return &brokenUnitOfWork{UnitOfWork: b.inner.Begin()}
}

type brokenUnitOfWork struct {
	repository.UnitOfWork
}

func (u *brokenUnitOfWork) SaveChanges(ctx context.Context) error {
	u.UnitOfWork.Discard()
	return &repository.CommitError{Op: "commit", Err: errors.New("connection reset by peer")}
}

type testServer struct {
	engine *gin.Engine
	store  *repository.MemoryStore
}

// newTestServer seeds the sample dataset and wires the handlers. When
// failCommits is set every SaveChanges fails after seeding.
func newTestServer(t *testing.T, failCommits bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore(nil)
	_, err := seed.NewLoader(store, nil).Run(context.Background())
	require.NoError(t, err)

	var writer unitOfWorkFactory = store
	if failCommits {
		writer = brokenStore{inner: store}
	}

	students := service.NewStudentService(store.Students(), writer, nil, nil, nil, nil, 3)
	courses := service.NewCourseService(store.Courses(), writer, nil, nil, nil)
	enrollments := service.NewEnrollmentService(store.Enrollments(), store.Students(), store.Courses(), writer, nil, nil, nil)

	sh := NewStudentHandler(students, enrollments)
	ch := NewCourseHandler(courses, enrollments)
	eh := NewEnrollmentHandler(enrollments)

	r := gin.New()
	r.GET("/students", sh.List)
	r.GET("/students/export", sh.Export)
	r.GET("/students/:id", sh.Get)
	r.GET("/students/:id/enrollments", sh.Enrollments)
	r.POST("/students", sh.Create)
	r.PUT("/students/:id", sh.Update)
	r.GET("/students/:id/delete", sh.DeleteConfirm)
	r.POST("/students/:id/delete", sh.Delete)
	r.DELETE("/students/:id", sh.Delete)
	r.GET("/courses/:id", ch.Get)
	r.POST("/courses", ch.Create)
	r.DELETE("/courses/:id", ch.Delete)
	r.GET("/courses/:id/enrollments", ch.Enrollments)
	r.GET("/enrollments", eh.List)
	r.POST("/enrollments", eh.Create)
	r.PUT("/enrollments/:id", eh.Update)
	r.DELETE("/enrollments/:id", eh.Delete)

	return &testServer{engine: r, store: store}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *apiError              `json:"error"`
	Pagination map[string]int         `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fields  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"fields"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
