package hrapi

import "github.com/shopspring/decimal"

// Rate is round(present / (present + absent) * 100). ok is false when the employee has
// no marked days, which is shown as a dash rather than 0%.
func (s EmployeeSummary) Rate() (rate int, ok bool) {
	total := s.TotalPresent + s.TotalAbsent
	if total <= 0 {
		return 0, false
	}
	pct := decimal.NewFromInt(int64(s.TotalPresent)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(pct.IntPart()), true
}
