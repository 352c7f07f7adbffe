// backend-go/internal/alerts/summary.go
package alerts

import (
	"fmt"
	"strings"

	"github.com/stockwise/backend-go/internal/domain"
)

// Summarize renders a short text overview of the active alerts for display
// in dashboards and CLI output.
func Summarize(list []domain.RiskAlert) string {
	if len(list) == 0 {
		return "No inventory alerts. All products are in good standing."
	}

	var understock, overstock, highRisk int
	for _, a := range list {
		switch a.Type {
		case domain.AlertUnderstock:
			understock++
		case domain.AlertOverstock:
			overstock++
		}
		if a.Level == domain.RiskHigh {
			highRisk++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Alerts: %d total\n", len(list))
	if understock > 0 {
		fmt.Fprintf(&b, "  - %d understock alert(s)\n", understock)
	}
	if overstock > 0 {
		fmt.Fprintf(&b, "  - %d overstock alert(s)\n", overstock)
	}
	if highRisk > 0 {
		fmt.Fprintf(&b, "  ! %d HIGH RISK alert(s) requiring immediate attention", highRisk)
	}
	return strings.TrimRight(b.String(), "\n")
}
