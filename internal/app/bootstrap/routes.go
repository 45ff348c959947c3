// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	entitiesfeature "github.com/dalemusser/eduflow/internal/app/features/entities"
	healthfeature "github.com/dalemusser/eduflow/internal/app/features/health"
	modulesettingsfeature "github.com/dalemusser/eduflow/internal/app/features/modulesettings"
	orgsfeature "github.com/dalemusser/eduflow/internal/app/features/orgs"
	announcementstore "github.com/dalemusser/eduflow/internal/app/store/announcements"
	attendancestore "github.com/dalemusser/eduflow/internal/app/store/attendance"
	classroomstore "github.com/dalemusser/eduflow/internal/app/store/classrooms"
	coursestore "github.com/dalemusser/eduflow/internal/app/store/courses"
	departmentstore "github.com/dalemusser/eduflow/internal/app/store/departments"
	facultystore "github.com/dalemusser/eduflow/internal/app/store/faculties"
	gradestore "github.com/dalemusser/eduflow/internal/app/store/grades"
	groupstore "github.com/dalemusser/eduflow/internal/app/store/groups"
	lessonstore "github.com/dalemusser/eduflow/internal/app/store/schedule"
	studentstore "github.com/dalemusser/eduflow/internal/app/store/students"
	teacherstore "github.com/dalemusser/eduflow/internal/app/store/teachers"
	"github.com/dalemusser/eduflow/internal/app/system/modguard"
	"github.com/dalemusser/eduflow/internal/app/system/modules"
	"github.com/dalemusser/eduflow/internal/app/system/orgctx"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// EduFlow serves health at /health and everything organization-scoped under
// /api/orgs/{orgID}. Each entity kind is gated by the module it belongs to.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Records, appCfg.StoreBackend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	orgsHandler := orgsfeature.NewHandler(deps.Orgs, logger)
	moduleHandler := modulesettingsfeature.NewHandler(deps.Modules, logger)
	lookup := func(orgID string) (modguard.Source, error) {
		svc, err := deps.Modules.Get(orgID)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	gate := func(key modules.Key) func(http.Handler) http.Handler {
		return modguard.Require(key, lookup, appCfg.DashboardPath, logger)
	}

	rs, origins := deps.Records, appCfg.WSOriginPatterns

	r.Route("/api/orgs", func(api chi.Router) {
		orgsHandler.MountRoutes(api)

		api.Route("/{"+orgctx.URLParam+"}", func(org chi.Router) {
			orgsHandler.MountOrgRoutes(org)

			org.Group(func(g chi.Router) {
				g.Use(orgctx.Middleware(deps.Orgs, logger))

				g.Mount("/modules", modulesettingsfeature.Routes(moduleHandler))

				g.With(gate(modules.Students)).Mount("/students", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.Student]("students", studentstore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Teachers)).Mount("/teachers", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.Teacher]("teachers", teacherstore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Faculties)).Mount("/faculties", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.Faculty]("faculties", facultystore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Departments)).Mount("/departments", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.Department]("departments", departmentstore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Groups)).Mount("/groups", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.Group]("groups", groupstore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Courses)).Mount("/courses", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.Course]("courses", coursestore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Schedule)).Mount("/schedule", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.Lesson]("schedule", lessonstore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Schedule)).Mount("/classrooms", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.Classroom]("classrooms", classroomstore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Attendance)).Mount("/attendance", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.AttendanceRecord]("attendance", attendancestore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Grades)).Mount("/grades", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.GradeRecord]("grades", gradestore.New(rs, logger), origins, logger)))
				g.With(gate(modules.Announcements)).Mount("/announcements", entitiesfeature.Routes(
					entitiesfeature.NewHandler[models.Announcement]("announcements", announcementstore.New(rs, logger), origins, logger)))
			})
		})
	})

	return r, nil
}
