package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stockwise/backend-go/internal/domain"
)

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, "No inventory alerts. All products are in good standing.", Summarize(nil))
}

func TestSummarizeCounts(t *testing.T) {
	list := []domain.RiskAlert{
		{Type: domain.AlertUnderstock, Level: domain.RiskHigh},
		{Type: domain.AlertUnderstock, Level: domain.RiskMedium},
		{Type: domain.AlertOverstock, Level: domain.RiskHigh},
	}

	summary := Summarize(list)
	assert.Contains(t, summary, "Active Alerts: 3 total")
	assert.Contains(t, summary, "2 understock alert(s)")
	assert.Contains(t, summary, "1 overstock alert(s)")
	assert.Contains(t, summary, "2 HIGH RISK alert(s)")
}
