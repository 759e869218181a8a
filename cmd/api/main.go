package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	appHTTP "github.com/cmlabs-hris/payroll-engine-go/internal/handler/http"
	auditpkg "github.com/cmlabs-hris/payroll-engine-go/internal/pkg/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/keymutex"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-engine-go/internal/service/attendance"
	overtimeService "github.com/cmlabs-hris/payroll-engine-go/internal/service/overtime"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
	payslipService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payslip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "payroll-engine"),
		slog.String("env", cfg.App.Env),
	)

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	periodRepo := postgresql.NewPeriodRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)

	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret)
	auditSink := auditpkg.NewSlogSink(logger)
	defer auditSink.Close()

	attendanceLocks := keymutex.New()
	periodLocks := keymutex.New()

	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		attendanceLocks,
		attendanceService.Policy{
			Late:                attendance.CutoffLatePolicy(cfg.Policy.LateCutoff),
			MinimumDailyHours:   cfg.Policy.MinimumDailyHours,
			OvertimeEscapeHours: cfg.Policy.OvertimeEscapeHours,
		},
		auditSink,
	)
	overtimeSvc := overtimeService.NewOvertimeService(overtimeRepo, cfg.Policy.AutoApproveMaxHours, auditSink)
	payrollSvc := payrollService.NewPayrollService(
		periodRepo,
		payslipRepo,
		employeeRepo,
		attendanceRepo,
		overtimeRepo,
		cfg.Policy,
		periodLocks,
		auditSink,
		logger,
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return postgresql.RunInTransaction(ctx, db, fn)
		},
	)
	payslipSvc := payslipService.NewPayslipService(
		payslipRepo,
		periodRepo,
		employeeRepo,
		payslip.CompanyInfo{
			Name:       cfg.Company.Name,
			AddressOne: cfg.Company.AddressOne,
			AddressTwo: cfg.Company.AddressTwo,
		},
	)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, jwtSvc)
	overtimeHandler := appHTTP.NewOvertimeHandler(overtimeSvc, jwtSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc, payslipSvc, jwtSvc)

	router := appHTTP.NewRouter(jwtSvc, attendanceHandler, overtimeHandler, payrollHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
