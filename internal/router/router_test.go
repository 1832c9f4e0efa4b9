package router

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contoso-university-api/internal/handler"
	"github.com/noah-isme/contoso-university-api/internal/middleware"
	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/repository"
	"github.com/noah-isme/contoso-university-api/internal/seed"
	"github.com/noah-isme/contoso-university-api/internal/service"
)

func newGuardedEngine(t *testing.T) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore(nil)
	_, err := seed.NewLoader(store, nil).Run(context.Background())
	require.NoError(t, err)

	metrics := service.NewMetricsService()
	tokens := service.NewTokenService(service.TokenConfig{Secret: "router-test-secret", Issuer: "contoso"})

	students := service.NewStudentService(store.Students(), store, nil, metrics, nil, nil, 10)
	courses := service.NewCourseService(store.Courses(), store, metrics, nil, nil)
	enrollments := service.NewEnrollmentService(store.Enrollments(), store.Students(), store.Courses(), store, metrics, nil, nil)

	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	Register(r, Handlers{
		Students:    handler.NewStudentHandler(students, enrollments),
		Courses:     handler.NewCourseHandler(courses, enrollments),
		Enrollments: handler.NewEnrollmentHandler(enrollments),
		Metrics: handler.NewMetricsHandler(metrics, map[string]handler.HealthCheck{
			"store": func(ctx context.Context) error { return nil },
		}),
	}, Options{
		Guard: []gin.HandlerFunc{middleware.JWT(tokens), middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar)},
	})
	return r, tokens
}

func serve(r *gin.Engine, method, path, token string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterReadRoutesAreOpen(t *testing.T) {
	r, _ := newGuardedEngine(t)

	for _, path := range []string{
		"/api/v1/students",
		"/api/v1/students/1",
		"/api/v1/students/1/delete",
		"/api/v1/students/1/enrollments",
		"/api/v1/students/export",
		"/api/v1/courses",
		"/api/v1/courses/1050/enrollments",
		"/api/v1/enrollments/1",
		"/health",
		"/metrics",
	} {
		w := serve(r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRegisterGuardsMutations(t *testing.T) {
	r, tokens := newGuardedEngine(t)
	payload := `{"last_name":"Smith","first_mid_name":"Anna","enrollment_date":"2021-09-01"}`

	w := serve(r, http.MethodPost, "/api/v1/students", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodDelete, "/api/v1/students/1", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	issued, err := tokens.Issue("registrar@contoso.edu", models.RoleRegistrar)
	require.NoError(t, err)

	w = serve(r, http.MethodPost, "/api/v1/students", issued.Token, payload)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/students/9", w.Header().Get("Location"))

	w = serve(r, http.MethodPost, "/api/v1/students/9/delete", issued.Token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
