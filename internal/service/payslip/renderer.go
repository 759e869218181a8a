package payslip

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/numword"
	"github.com/shopspring/decimal"
)

const lineWidth = 72

// Render turns a payslip record into a fixed-layout plain-text document. It is
// a pure function: no clock, no I/O, and identical input always yields
// byte-identical output. Missing required fields fail with ErrIncompleteRecord
// instead of rendering a partial document.
func Render(
	record payroll.PayslipRecord,
	emp employee.Employee,
	period payroll.PayrollPeriod,
	company payslip.CompanyInfo,
) (payslip.Document, error) {
	if err := checkComplete(record, emp, period, company); err != nil {
		return payslip.Document{}, err
	}

	var b strings.Builder

	writeCentered(&b, company.Name)
	if company.AddressOne != "" {
		writeCentered(&b, company.AddressOne)
	}
	if company.AddressTwo != "" {
		writeCentered(&b, company.AddressTwo)
	}
	writeRule(&b)
	writeCentered(&b, "PAYSLIP - "+strings.ToUpper(period.Label))
	writeRule(&b)

	writePair(&b, "Employee", emp.FullName, "Employee Code", emp.EmployeeCode)
	writePair(&b, "Period",
		period.StartDate.Format("02 Jan 2006")+" to "+period.EndDate.Format("02 Jan 2006"),
		"Payable Days", record.PayableDays.StringFixed(1))
	if emp.BankName != "" {
		writePair(&b, "Bank", emp.BankName, "Account", maskAccount(emp.BankAccountNumber))
	}
	writeRule(&b)

	writeCentered(&b, "ATTENDANCE SUMMARY")
	writeLine(&b, fmt.Sprintf("Working Days: %-4d Present: %-4d Absent: %-4d Half Days: %-4d",
		record.Summary.WorkingDays, record.Summary.PresentDays,
		record.Summary.AbsentDays, record.Summary.HalfDays))
	writeLine(&b, fmt.Sprintf("Leave Days:   %-4d Late Comings: %-3d Overtime Hours: %.2f",
		record.Summary.LeaveDays, record.Summary.LateComings, record.Summary.OvertimeHours))
	writeRule(&b)

	writeCentered(&b, "EARNINGS")
	writeAmount(&b, "Basic Salary", record.Earnings.BasicSalary)
	writeAmount(&b, "HRA", record.Earnings.HRA)
	writeAmount(&b, "Conveyance Allowance", record.Earnings.ConveyanceAllowance)
	writeAmount(&b, "Medical Allowance", record.Earnings.MedicalAllowance)
	writeAmount(&b, "Special Allowance", record.Earnings.SpecialAllowance)
	writeAmount(&b, "Bonus", record.Earnings.Bonus)
	writeAmount(&b, "Overtime Pay", record.Earnings.OvertimePay)
	writeAmount(&b, "Arrears", record.Earnings.Arrears)
	writeAmount(&b, "Other Earnings", record.Earnings.OtherEarnings)
	writeAmount(&b, "Total Earnings", record.EarningsTotal)
	writeRule(&b)

	writeCentered(&b, "DEDUCTIONS")
	writeAmount(&b, "Provident Fund", record.Deductions.PF)
	writeAmount(&b, "ESI", record.Deductions.ESI)
	writeAmount(&b, "Professional Tax", record.Deductions.ProfessionalTax)
	writeAmount(&b, "TDS", record.Deductions.TDS)
	writeAmount(&b, "Loan Deduction", record.Deductions.LoanDeduction)
	writeAmount(&b, "Leave Deduction", record.Deductions.LeaveDeduction)
	writeAmount(&b, "Attendance Deduction", record.Deductions.AttendanceDeduction)
	writeAmount(&b, "Other Deductions", record.Deductions.OtherDeductions)
	writeAmount(&b, "Total Deductions", record.DeductionsTotal)

	if !record.Deductions.AttendanceDeduction.IsZero() {
		writeLine(&b, "")
		writeLine(&b, fmt.Sprintf("  Attendance deduction: %d absent day(s), %d late coming(s)",
			record.Summary.AbsentDays, record.Summary.LateComings))
	}
	if record.WaiverApplied && record.WaiverReason != nil {
		writeLine(&b, "")
		writeLine(&b, "  Attendance deduction waived: "+*record.WaiverReason)
	}
	writeRule(&b)

	writeAmount(&b, "NET PAY", record.NetPay)
	if record.NegativeNet {
		writeLine(&b, "  *** NET PAY IS NEGATIVE - REVIEW REQUIRED ***")
	}
	writeLine(&b, "Net Pay in Words: "+amountInWords(record.NetPay))
	writeRule(&b)
	writeCentered(&b, "This is a system-generated payslip.")

	filename := fmt.Sprintf("payslip-%s-%s.txt", emp.EmployeeCode, record.PayrollPeriodID)

	return payslip.Document{
		Filename:    filename,
		ContentType: "text/plain; charset=utf-8",
		Bytes:       []byte(b.String()),
	}, nil
}

// maskAccount hides all but the last four digits of an account number.
func maskAccount(account string) string {
	if len(account) <= 4 {
		return account
	}
	return strings.Repeat("*", len(account)-4) + account[len(account)-4:]
}

func checkComplete(
	record payroll.PayslipRecord,
	emp employee.Employee,
	period payroll.PayrollPeriod,
	company payslip.CompanyInfo,
) error {
	switch {
	case record.EmployeeID == "",
		record.PayrollPeriodID == "",
		emp.FullName == "",
		emp.EmployeeCode == "",
		period.Label == "",
		period.StartDate.IsZero(),
		period.EndDate.IsZero(),
		company.Name == "":
		return payslip.ErrIncompleteRecord
	}
	return nil
}

func writeLine(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}

func writeRule(b *strings.Builder) {
	writeLine(b, strings.Repeat("-", lineWidth))
}

// Padding counts runes, not bytes, so non-ASCII names stay aligned.
func writeCentered(b *strings.Builder, s string) {
	pad := (lineWidth - utf8.RuneCountInString(s)) / 2
	if pad < 0 {
		pad = 0
	}
	writeLine(b, strings.Repeat(" ", pad)+s)
}

func writePair(b *strings.Builder, leftLabel, leftValue, rightLabel, rightValue string) {
	left := fmt.Sprintf("%s: %s", leftLabel, leftValue)
	right := fmt.Sprintf("%s: %s", rightLabel, rightValue)
	gap := lineWidth - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	writeLine(b, left+strings.Repeat(" ", gap)+right)
}

func writeAmount(b *strings.Builder, label string, amount decimal.Decimal) {
	value := formatAmount(amount)
	gap := lineWidth - utf8.RuneCountInString(label) - utf8.RuneCountInString(value)
	if gap < 1 {
		gap = 1
	}
	writeLine(b, label+strings.Repeat(" ", gap)+value)
}

// formatAmount renders a decimal with two decimals and Indian digit grouping:
// 1234567.5 becomes 12,34,567.50.
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	grouped := groupIndian(parts[0])

	out := grouped + "." + parts[1]
	if negative {
		out = "-" + out
	}
	return out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}

func amountInWords(d decimal.Decimal) string {
	negative := d.IsNegative()
	abs := d.Abs()

	rupees := abs.IntPart()
	paise := abs.Sub(decimal.NewFromInt(rupees)).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	words := "Rupees " + numword.Words(rupees)
	if paise > 0 {
		words += " and " + numword.Words(paise) + " Paise"
	}
	words += " Only"

	if negative {
		words = "Minus " + words
	}
	return words
}
