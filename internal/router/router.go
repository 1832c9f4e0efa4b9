package router

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contoso-university-api/internal/handler"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Students    *handler.StudentHandler
	Courses     *handler.CourseHandler
	Enrollments *handler.EnrollmentHandler
	Metrics     *handler.MetricsHandler
}

// Options tunes route registration.
type Options struct {
	APIPrefix string
	// Guard runs before every mutating route. Empty leaves them open.
	Guard []gin.HandlerFunc
}

type recordRoutes struct {
	list, get, create, update, deleteConfirm, delete gin.HandlerFunc
}

// Register mounts the API routes on r.
func Register(r *gin.Engine, h Handlers, opts Options) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	students := api.Group("/students")
	students.GET("/export", h.Students.Export)
	students.GET("/:id/enrollments", h.Students.Enrollments)
	mountRecord(students, opts.Guard, recordRoutes{
		list:          h.Students.List,
		get:           h.Students.Get,
		create:        h.Students.Create,
		update:        h.Students.Update,
		deleteConfirm: h.Students.DeleteConfirm,
		delete:        h.Students.Delete,
	})

	courses := api.Group("/courses")
	courses.GET("/:id/enrollments", h.Courses.Enrollments)
	mountRecord(courses, opts.Guard, recordRoutes{
		list:          h.Courses.List,
		get:           h.Courses.Get,
		create:        h.Courses.Create,
		update:        h.Courses.Update,
		deleteConfirm: h.Courses.DeleteConfirm,
		delete:        h.Courses.Delete,
	})

	enrollments := api.Group("/enrollments")
	mountRecord(enrollments, opts.Guard, recordRoutes{
		list:          h.Enrollments.List,
		get:           h.Enrollments.Get,
		create:        h.Enrollments.Create,
		update:        h.Enrollments.Update,
		deleteConfirm: h.Enrollments.DeleteConfirm,
		delete:        h.Enrollments.Delete,
	})
}

func mountRecord(g *gin.RouterGroup, guard []gin.HandlerFunc, routes recordRoutes) {
	g.GET("", routes.list)
	g.GET("/:id", routes.get)
	g.GET("/:id/delete", routes.deleteConfirm)

	guarded := func(h gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(guard)+1)
		chain = append(chain, guard...)
		return append(chain, h)
	}
	g.POST("", guarded(routes.create)...)
	g.PUT("/:id", guarded(routes.update)...)
	g.POST("/:id/delete", guarded(routes.delete)...)
	g.DELETE("/:id", guarded(routes.delete)...)
}
