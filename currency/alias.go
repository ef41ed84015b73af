package currency

import "strings"

// aliases maps loose shorthands seen in upstream payloads to ISO 4217 codes.
var aliases = map[string]string{
	"US": "USD",
	"CA": "CAD",
	"CD": "CAD",
	"EU": "EUR",
}

// Normalize trims and upper-cases code and resolves known shorthands.
// Unknown codes are returned as-is.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if iso, ok := aliases[code]; ok {
		return iso
	}
	return code
}
