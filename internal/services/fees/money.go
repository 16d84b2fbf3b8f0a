package fees

import "fmt"

// FormatMinor renders an amount of minor units for display, e.g. "$125.00" or
// "-$5.00". Currencies other than USD are prefixed with their code.
func FormatMinor(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	prefix := "$"
	if currency != "" && currency != "USD" {
		prefix = currency + " "
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, prefix, amount/100, amount%100)
}
