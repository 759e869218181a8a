package payslip

import "errors"

// ErrIncompleteRecord is returned when a payslip record or its employee data
// is missing a field the renderer needs. The renderer never substitutes
// placeholders for missing values.
var ErrIncompleteRecord = errors.New("payslip record is missing required fields")
