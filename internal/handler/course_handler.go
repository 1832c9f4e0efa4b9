package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contoso-university-api/internal/service"
	"github.com/noah-isme/contoso-university-api/pkg/response"
)

// CourseHandler exposes course endpoints.
type CourseHandler struct {
	courses     *service.CourseService
	enrollments *service.EnrollmentService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService, enrollments *service.EnrollmentService) *CourseHandler {
	return &CourseHandler{courses: courses, enrollments: enrollments}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path int true "Course number"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), pathID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Enrollments godoc
// @Summary List the enrollments of a course
// @Tags Courses
// @Produce json
// @Param id path int true "Course number"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/enrollments [get]
func (h *CourseHandler) Enrollments(c *gin.Context) {
	enrollments, err := h.enrollments.ListByCourse(c.Request.Context(), pathID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseInput true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var input service.CreateCourseInput
	if !bindJSON(c, &input) {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), input)
	if err != nil {
		respondFormError(c, err, input)
		return
	}
	response.Created(c, createdPath(c, course.ID), course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path int true "Course number"
// @Param payload body service.EditCourseInput true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var input service.EditCourseInput
	if !bindJSON(c, &input) {
		return
	}
	course, err := h.courses.Update(c.Request.Context(), pathID(c), input)
	if err != nil {
		respondFormError(c, err, input)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// DeleteConfirm godoc
// @Summary Show the course about to be deleted
// @Tags Courses
// @Produce json
// @Param id path int true "Course number"
// @Param saveChangesError query bool false "Set after a failed delete"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/delete [get]
func (h *CourseHandler) DeleteConfirm(c *gin.Context) {
	course, message, err := h.courses.DeleteConfirmation(c.Request.Context(), pathID(c), queryBool(c, "saveChangesError"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil, deleteConfirmMeta(c, message))
}

// Delete godoc
// @Summary Delete course and its enrollments
// @Tags Courses
// @Param id path int true "Course number"
// @Success 204
// @Router /courses/{id} [delete]
// @Router /courses/{id}/delete [post]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), pathID(c)); err != nil {
		respondDeleteError(c, err)
		return
	}
	response.NoContent(c)
}
