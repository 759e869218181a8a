package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	overtimeHandler OvertimeHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/punch-in", attendanceHandler.PunchIn)
				r.Post("/punch-out", attendanceHandler.PunchOut)
				r.Post("/breaks/start", attendanceHandler.StartBreak)
				r.Post("/breaks/end", attendanceHandler.EndBreak)
				r.Get("/days/{date}", attendanceHandler.GetDay)

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireHR)
					r.Get("/", attendanceHandler.List)
					r.Post("/{employeeID}/regularize", attendanceHandler.Regularize)
				})
			})

			r.Route("/overtime", func(r chi.Router) {
				r.Post("/", overtimeHandler.Submit)
				r.Get("/", overtimeHandler.List)
				r.Get("/{requestID}", overtimeHandler.Get)

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireHR)
					r.Post("/{requestID}/review", overtimeHandler.Review)
				})
			})

			r.Route("/payroll/periods", func(r chi.Router) {
				r.Route("/{periodID}/payslips/{employeeID}", func(r chi.Router) {
					r.Get("/document", payrollHandler.DownloadPayslip)

					// HR only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireHR)
						r.Get("/", payrollHandler.GetPayslip)
						r.Post("/compute", payrollHandler.ComputePayslip)
					})
				})

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireHR)
					r.Get("/", payrollHandler.ListPeriods)
					r.Post("/", payrollHandler.CreatePeriod)
					r.Get("/{periodID}", payrollHandler.GetPeriod)
					r.Post("/{periodID}/process", payrollHandler.ProcessPayroll)
					r.Post("/{periodID}/mark-paid", payrollHandler.MarkPaid)
					r.Post("/{periodID}/waivers", payrollHandler.GrantWaiver)
					r.Get("/{periodID}/payslips", payrollHandler.ListPayslips)
				})
			})
		})
	})
	return r
}
