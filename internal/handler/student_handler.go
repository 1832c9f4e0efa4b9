package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contoso-university-api/internal/middleware"
	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/service"
	"github.com/noah-isme/contoso-university-api/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students    *service.StudentService
	enrollments *service.EnrollmentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, enrollments *service.EnrollmentService) *StudentHandler {
	return &StudentHandler{students: students, enrollments: enrollments}
}

func studentFilter(c *gin.Context) models.StudentFilter {
	return models.StudentFilter{
		Search:    strings.TrimSpace(c.Query("searchString")),
		SortOrder: c.Query("sortOrder"),
		Page:      queryInt(c, "page"),
		PageSize:  queryInt(c, "pageSize"),
	}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param sortOrder query string false "Name_desc, Date or Date_desc"
// @Param searchString query string false "Case-insensitive name search"
// @Param page query int false "Page, enables paging"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	result, err := h.students.List(c.Request.Context(), studentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.CacheHit)
	middleware.SetMeta(c, middleware.MetaSort, result.Sort)
	response.JSON(c, http.StatusOK, result.Students, result.Pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), pathID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Enrollments godoc
// @Summary List the enrollments of a student
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *StudentHandler) Enrollments(c *gin.Context) {
	enrollments, err := h.enrollments.ListByStudent(c.Request.Context(), pathID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentInput true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var input service.CreateStudentInput
	if !bindJSON(c, &input) {
		return
	}
	student, err := h.students.Create(c.Request.Context(), input)
	if err != nil {
		respondFormError(c, err, input)
		return
	}
	response.Created(c, createdPath(c, student.ID), student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Student ID"
// @Param payload body service.EditStudentInput true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var input service.EditStudentInput
	if !bindJSON(c, &input) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), pathID(c), input)
	if err != nil {
		respondFormError(c, err, input)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// DeleteConfirm godoc
// @Summary Show the student about to be deleted
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Param saveChangesError query bool false "Set after a failed delete"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/delete [get]
func (h *StudentHandler) DeleteConfirm(c *gin.Context) {
	student, message, err := h.students.DeleteConfirmation(c.Request.Context(), pathID(c), queryBool(c, "saveChangesError"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil, deleteConfirmMeta(c, message))
}

// Delete godoc
// @Summary Delete student and its enrollments
// @Tags Students
// @Param id path int true "Student ID"
// @Success 204
// @Failure 303 "Redirect to the delete confirmation with saveChangesError=true"
// @Router /students/{id} [delete]
// @Router /students/{id}/delete [post]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), pathID(c)); err != nil {
		respondDeleteError(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the student roster
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param sortOrder query string false "Sort token"
// @Param searchString query string false "Name search"
// @Success 200 {file} file
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	out, err := h.students.Export(c.Request.Context(), c.Query("format"), studentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}
