package calculator

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

// FormatChange renders a change like "+10.00 (+10.00%)".
// The percent part is omitted when it is undefined.
func FormatChange(diff, percent decimal.Decimal, hasPercent bool) string {
	if !hasPercent {
		return signed(diff)
	}
	return fmt.Sprintf("%s (%s%%)", signed(diff), signed(percent))
}

// FormatVolume renders an integer with thousands separators.
func FormatVolume(v int64) string {
	return humanize.Comma(v)
}
