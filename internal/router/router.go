package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/medrec/internal/email"
	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/handler"
	allergyh "github.com/jwalitptl/medrec/internal/handler/allergy"
	appointmenth "github.com/jwalitptl/medrec/internal/handler/appointment"
	authh "github.com/jwalitptl/medrec/internal/handler/auth"
	dashboardh "github.com/jwalitptl/medrec/internal/handler/dashboard"
	directoryh "github.com/jwalitptl/medrec/internal/handler/directory"
	doctorh "github.com/jwalitptl/medrec/internal/handler/doctor"
	"github.com/jwalitptl/medrec/internal/handler/health"
	patienth "github.com/jwalitptl/medrec/internal/handler/patient"
	prescriptionh "github.com/jwalitptl/medrec/internal/handler/prescription"
	"github.com/jwalitptl/medrec/internal/handler/prometheus"
	recordh "github.com/jwalitptl/medrec/internal/handler/record"
	userh "github.com/jwalitptl/medrec/internal/handler/user"
	"github.com/jwalitptl/medrec/internal/middleware"
	"github.com/jwalitptl/medrec/internal/repository"
	"github.com/jwalitptl/medrec/internal/service/allergy"
	"github.com/jwalitptl/medrec/internal/service/appointment"
	"github.com/jwalitptl/medrec/internal/service/audit"
	"github.com/jwalitptl/medrec/internal/service/auth"
	"github.com/jwalitptl/medrec/internal/service/dashboard"
	"github.com/jwalitptl/medrec/internal/service/directory"
	"github.com/jwalitptl/medrec/internal/service/doctor"
	"github.com/jwalitptl/medrec/internal/service/patient"
	"github.com/jwalitptl/medrec/internal/service/prescription"
	"github.com/jwalitptl/medrec/internal/service/record"
	"github.com/jwalitptl/medrec/internal/session"
	"github.com/jwalitptl/medrec/pkg/security"
)

// Dependencies are the infrastructure the site runs on.
type Dependencies struct {
	Repos    repository.Set
	Sessions *session.Manager
	Files    record.Attachments
	Mailer   email.Service
	Hasher   security.PasswordHasher
	// DB backs the readiness probe; nil when running in memory.
	DB health.Pinger
}

type Config struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	RateLimitOff   bool
	CORSOrigins    []string
	MaxUploadBytes int64
	HSTS           bool
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	limiter *middleware.RateLimiter
	metrics *prometheus.Handler
	health  *health.Handler

	authH         *authh.Handler
	dashboardH    *dashboardh.Handler
	doctorH       *doctorh.Handler
	patientH      *patienth.Handler
	appointmentH  *appointmenth.Handler
	recordH       *recordh.Handler
	prescriptionH *prescriptionh.Handler
	allergyH      *allergyh.Handler
	directoryH    *directoryh.Handler
	userH         *userh.Handler
}

// NewRouter builds the services and views over deps and returns the
// configured router.
func NewRouter(deps Dependencies, config Config) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	form.Setup()

	repos := deps.Repos
	auditor := audit.NewLogger(audit.NewService(repos.Audit))

	authSvc := auth.NewService(repos.Users, repos.Patients, repos.Doctors, repos.Attributions,
		deps.Hasher, deps.Mailer, auditor)
	patientSvc := patient.NewService(repos.Patients, auditor)
	doctorSvc := doctor.NewService(repos.Doctors, repos.Patients, repos.Specialities, repos.Attributions, auditor)
	appointmentSvc := appointment.NewService(repos.Appointments, repos.Patients, repos.Doctors, auditor)
	recordSvc := record.NewService(repos.Records, repos.Patients, repos.Prescriptions, deps.Files, auditor)
	prescriptionSvc := prescription.NewService(repos.Prescriptions, repos.Records, auditor)
	allergySvc := allergy.NewService(repos.Allergies, repos.Patients, auditor)
	directorySvc := directory.NewService(repos.Pharmacies, repos.Specialities)
	dashboardSvc := dashboard.NewService(appointmentSvc, patientSvc, doctorSvc)

	r := &Router{
		engine: gin.New(),
		auth:   middleware.NewAuthMiddleware(deps.Sessions, authSvc),
		limiter: middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		}),
		metrics: prometheus.New(),
		health:  health.NewHandler(deps.DB),

		authH:         authh.NewHandler(authSvc, deps.Sessions),
		dashboardH:    dashboardh.NewHandler(dashboardSvc),
		doctorH:       doctorh.NewHandler(doctorSvc, directorySvc),
		patientH:      patienth.NewHandler(patientSvc),
		appointmentH:  appointmenth.NewHandler(appointmentSvc, doctorSvc, patientSvc),
		recordH:       recordh.NewHandler(recordSvc),
		prescriptionH: prescriptionh.NewHandler(prescriptionSvc),
		allergyH:      allergyh.NewHandler(allergySvc),
		directoryH:    directoryh.NewHandler(directorySvc),
		userH:         userh.NewHandler(authSvc),
	}

	headers := middleware.DefaultPageHeaders()
	headers.HSTS = config.HSTS

	r.engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		r.metrics.Middleware(),
		middleware.CORS(config.CORSOrigins),
		middleware.SecurityHeaders(headers),
	)
	if config.MaxUploadBytes > 0 {
		r.engine.Use(middleware.SizeLimit(config.MaxUploadBytes))
	}

	r.setup(config)
	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setup(config Config) {
	r.engine.GET("/metrics", r.metrics.Handler())
	r.health.RegisterRoutes(&r.engine.RouterGroup)

	r.engine.NoRoute(func(c *gin.Context) {
		handler.Render(c, http.StatusNotFound, "404.html", nil)
	})

	site := r.engine.Group("")
	site.Use(r.auth.LoadSession())

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if config.RateLimitOff {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{r.limiter.RateLimit(), h}
	}
	path := func(name string) string { return handler.Paths[name] }

	// Public pages
	site.GET(path(handler.RouteHome), r.dashboardH.Home)
	site.GET(path(handler.RouteRegister), r.authH.RegisterPage)
	site.POST(path(handler.RouteRegister), limited(r.authH.Register)...)
	site.GET(path(handler.RouteLogin), r.authH.LoginPage)
	site.POST(path(handler.RouteLogin), limited(r.authH.Login)...)
	site.GET(path(handler.RouteDoctorList), r.doctorH.List)
	site.GET(path(handler.RouteDoctorDetail), r.doctorH.Detail)
	site.GET(path(handler.RoutePharmacyList), r.directoryH.Pharmacies)
	site.GET(path(handler.RouteSpecialityList), r.directoryH.Specialities)

	// Pages behind login
	private := site.Group("")
	private.Use(r.auth.RequireLogin())
	{
		private.POST(path(handler.RouteLogout), r.authH.Logout)
		private.GET(path(handler.RouteDashboard), r.dashboardH.Dashboard)

		private.POST(path(handler.RouteDoctorAttribute), r.doctorH.Attribute)
		private.GET(path(handler.RouteDoctorProfile), r.doctorH.ProfilePage)
		private.POST(path(handler.RouteDoctorProfile), r.doctorH.SaveProfile)

		private.GET(path(handler.RoutePatientList), r.patientH.List)
		private.GET(path(handler.RoutePatientProfile), r.patientH.ProfilePage)
		private.POST(path(handler.RoutePatientProfile), r.patientH.SaveProfile)

		private.GET(path(handler.RouteAppointmentList), r.appointmentH.List)
		private.GET(path(handler.RouteAppointmentNew), r.appointmentH.NewPage)
		private.POST(path(handler.RouteAppointmentNew), r.appointmentH.Create)
		private.POST(path(handler.RouteAppointmentState), r.appointmentH.UpdateStatus)

		private.GET(path(handler.RouteRecordListAll), r.recordH.ListAll)
		private.GET(path(handler.RouteRecordList), r.recordH.List)
		private.GET(path(handler.RouteRecordCreate), r.recordH.NewPage)
		private.POST(path(handler.RouteRecordCreate), r.recordH.Create)
		private.GET(path(handler.RouteRecordDetail), r.recordH.Detail)
		private.GET(path(handler.RouteRecordFile), r.recordH.File)

		private.GET(path(handler.RoutePrescriptionNew), r.prescriptionH.NewPage)
		private.POST(path(handler.RoutePrescriptionNew), r.prescriptionH.Create)

		private.GET(path(handler.RouteAllergyList), r.allergyH.List)
		private.GET(path(handler.RouteAllergyCreate), r.allergyH.NewPage)
		private.POST(path(handler.RouteAllergyCreate), r.allergyH.Create)

		private.GET(path(handler.RoutePharmacyCreate), r.directoryH.NewPharmacyPage)
		private.POST(path(handler.RoutePharmacyCreate), r.directoryH.CreatePharmacy)
		private.GET(path(handler.RouteSpecialityCreate), r.directoryH.NewSpecialityPage)
		private.POST(path(handler.RouteSpecialityCreate), r.directoryH.CreateSpeciality)

		private.POST(path(handler.RouteUserDelete), r.userH.Delete)
	}
}
