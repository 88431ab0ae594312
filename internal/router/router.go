package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/innouni-api/internal/handler"
	"github.com/noah-isme/innouni-api/internal/middleware"
	"github.com/noah-isme/innouni-api/internal/models"
	"github.com/noah-isme/innouni-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/innouni-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/innouni-api/pkg/middleware/requestid"
)

// Options toggles optional surfaces of the HTTP API.
type Options struct {
	APIPrefix        string
	AllowedOrigins   []string
	EnforceOwnership bool
	MetricsEnabled   bool
	DocsEnabled      bool
}

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Student   *handler.StudentHandler
	Teacher   *handler.TeacherHandler
	Material  *handler.MaterialHandler
	Contact   *handler.ContactHandler
	Metrics   *handler.MetricsHandler
}

// Dependencies are the cross-cutting collaborators used by middleware.
type Dependencies struct {
	Tokens   middleware.TokenValidator
	Audit    middleware.AuditRecorder
	Observer middleware.RequestObserver
	Logger   *zap.Logger
}

// New builds the gin engine with every route registered.
func New(opts Options, h Handlers, deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	if opts.MetricsEnabled && deps.Observer != nil {
		r.Use(middleware.Metrics(deps.Observer))
	}
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if opts.MetricsEnabled {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if opts.DocsEnabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(apiPrefix(opts.APIPrefix))
	jwt := middleware.JWT(deps.Tokens)
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, deps.Logger, action, resource)
	}

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	authed := auth.Group("", jwt, middleware.Authenticated())
	authed.GET("/profile", h.Auth.Profile)
	authed.PUT("/profile", h.Auth.UpdateProfile)
	authed.PUT("/password", h.Auth.ChangePassword)
	authed.GET("/verify", h.Auth.Verify)

	dashboard := api.Group("/dashboard")
	if opts.EnforceOwnership {
		dashboard.Use(jwt, middleware.SelfOrAdmin("userId"))
	} else {
		dashboard.Use(middleware.OptionalJWT(deps.Tokens))
	}
	dashboard.GET("/stats/:userId", h.Dashboard.Stats)
	dashboard.GET("/activity/:userId", h.Dashboard.Activity)
	dashboard.GET("/progress/:userId", h.Dashboard.Progress)
	dashboard.GET("/recommendations/:userId", h.Dashboard.Recommendations)
	api.GET("/dashboard/:userId/route", jwt, middleware.Authenticated(), middleware.SelfOrAdmin("userId"), h.Dashboard.Route)

	student := api.Group("/student", jwt, middleware.StudentOnly())
	student.GET("/dashboard/:userId", middleware.SelfOrAdmin("userId"), h.Student.Dashboard)
	student.POST("/courses/:courseId/enroll", h.Student.Enroll)
	student.PUT("/courses/:courseId/progress", h.Student.UpdateProgress)
	student.POST("/groups", h.Student.CreateGroup)
	student.POST("/groups/:groupId/join", h.Student.JoinGroup)
	student.POST("/groups/:groupId/leave", h.Student.LeaveGroup)
	student.PUT("/tasks/:taskId/complete", h.Student.CompleteTask)

	teacher := api.Group("/teacher", jwt, middleware.TeacherOrAdmin())
	teacher.GET("/dashboard/:userId", middleware.SelfOrAdmin("userId"), h.Teacher.Dashboard)
	teacher.GET("/analytics/:userId", middleware.SelfOrAdmin("userId"), h.Teacher.Analytics)
	teacher.GET("/courses", h.Teacher.ListCourses)
	teacher.POST("/courses", audit(models.AuditActionCourseCreate, "course"), h.Teacher.CreateCourse)
	teacher.PUT("/courses/:courseId", audit(models.AuditActionCourseUpdate, "course"), h.Teacher.UpdateCourse)
	teacher.GET("/courses/:courseId/students", h.Teacher.CourseStudents)
	teacher.GET("/courses/:courseId/students/export", h.Teacher.ExportRoster)
	teacher.POST("/courses/:courseId/materials", audit(models.AuditActionMaterialUpload, "course_material"), h.Material.Upload)
	teacher.GET("/library", h.Material.Library)
	teacher.GET("/tasks", h.Teacher.ListTasks)
	teacher.POST("/tasks", audit(models.AuditActionTaskCreate, "task"), h.Teacher.CreateTask)
	teacher.POST("/tasks/:taskId/grade", h.Teacher.GradeTask)

	api.GET("/courses/:courseId/materials", jwt, middleware.Authenticated(), h.Material.CourseMaterials)
	api.GET("/materials/:materialId/download", h.Material.Download)

	api.POST("/contact", h.Contact.Submit)

	admin := api.Group("/admin", jwt, middleware.AdminOnly())
	admin.GET("/metrics", h.Metrics.Snapshot)

	return r
}

func apiPrefix(prefix string) string {
	prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "/" {
		return "/api"
	}
	return prefix
}
