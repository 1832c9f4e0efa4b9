package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/service"
	"github.com/noah-isme/contoso-university-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param studentId query int false "Filter by student"
// @Param courseId query int false "Filter by course"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := models.EnrollmentFilter{StudentID: queryInt(c, "studentId"), CourseID: queryInt(c, "courseId")}
	enrollments, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Get godoc
// @Summary Get enrollment
// @Tags Enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), pathID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Create godoc
// @Summary Enroll a student in a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.CreateEnrollmentInput true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var input service.CreateEnrollmentInput
	if !bindJSON(c, &input) {
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), input)
	if err != nil {
		respondFormError(c, err, input)
		return
	}
	response.Created(c, createdPath(c, enrollment.ID), enrollment)
}

// Update godoc
// @Summary Update enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param payload body service.EditEnrollmentInput true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	var input service.EditEnrollmentInput
	if !bindJSON(c, &input) {
		return
	}
	enrollment, err := h.enrollments.Update(c.Request.Context(), pathID(c), input)
	if err != nil {
		respondFormError(c, err, input)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// DeleteConfirm godoc
// @Summary Show the enrollment about to be deleted
// @Tags Enrollments
// @Produce json
// @Param id path int true "Enrollment ID"
// @Param saveChangesError query bool false "Set after a failed delete"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/delete [get]
func (h *EnrollmentHandler) DeleteConfirm(c *gin.Context) {
	enrollment, message, err := h.enrollments.DeleteConfirmation(c.Request.Context(), pathID(c), queryBool(c, "saveChangesError"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil, deleteConfirmMeta(c, message))
}

// Delete godoc
// @Summary Delete enrollment
// @Tags Enrollments
// @Param id path int true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
// @Router /enrollments/{id}/delete [post]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.enrollments.Delete(c.Request.Context(), pathID(c)); err != nil {
		respondDeleteError(c, err)
		return
	}
	response.NoContent(c)
}
