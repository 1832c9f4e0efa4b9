package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/service"
	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
)

func TestCourseHandlerCreate(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodPost, "/courses", service.CreateCourseInput{CourseID: 5000, Title: "Astronomy", Credits: 2})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/courses/5000", w.Header().Get("Location"))

	w = srv.do(http.MethodPost, "/courses", service.CreateCourseInput{CourseID: 1050, Title: "Chemistry II", Credits: 3})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrConflict.Code, decode(t, w).Error.Code)

	w = srv.do(http.MethodPost, "/courses", service.CreateCourseInput{CourseID: 5001, Title: "Astrology", Credits: 9})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	require.Len(t, env.Error.Fields, 1)
	assert.Equal(t, "credits", env.Error.Fields[0].Field)
}

func TestCourseHandlerDeleteCascades(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodGet, "/courses/1050/enrollments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details []models.EnrollmentDetail
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &details))
	assert.Len(t, details, 3)

	w = srv.do(http.MethodDelete, "/courses/1050", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodGet, "/courses/1050", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(http.MethodGet, "/courses/1050/enrollments", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(http.MethodGet, "/students/1/enrollments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	details = nil
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &details))
	assert.Len(t, details, 2)
}
