package payslip

// CompanyInfo is the static letterhead printed on every payslip.
type CompanyInfo struct {
	Name       string
	AddressOne string
	AddressTwo string
}

// Document is a rendered payslip. Rendering the same record twice yields
// byte-identical content.
type Document struct {
	Filename    string
	ContentType string
	Bytes       []byte
}
