package validation

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// Identifier lengths
	MaxClientIDLength = 64
	MaxVendorIDLength = 64
)
