package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradekeeper/portfolio-analytics/internal/models"
)

func TestRiskAlerts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tdb := SetupTestDB(t)
	defer tdb.Cleanup(t)

	raise := func(t *testing.T, userID, severity string) *models.RiskAlert {
		t.Helper()
		alert := &models.RiskAlert{
			UserID:    userID,
			AlertType: models.AlertTypeDrawdown,
			Severity:  severity,
			Message:   "drawdown exceeded threshold",
		}
		require.NoError(t, tdb.CreateRiskAlert(alert))
		return alert
	}

	t.Run("active alerts come back most severe first", func(t *testing.T) {
		tdb.TruncateAll(t)
		user, _ := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))

		raise(t, user.ID, models.SeverityLow)
		raise(t, user.ID, models.SeverityCritical)
		raise(t, user.ID, models.SeverityMedium)
		raise(t, user.ID, models.SeverityHigh)

		active, err := tdb.GetActiveAlerts(user.ID)
		require.NoError(t, err)
		require.Len(t, active, 4)

		severities := make([]string, len(active))
		for i, a := range active {
			severities[i] = a.Severity
		}
		assert.Equal(t, []string{
			models.SeverityCritical,
			models.SeverityHigh,
			models.SeverityMedium,
			models.SeverityLow,
		}, severities)
	})

	t.Run("resolving removes the alert from active views", func(t *testing.T) {
		tdb.TruncateAll(t)
		user, _ := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))

		alert := raise(t, user.ID, models.SeverityHigh)
		require.NoError(t, tdb.ResolveAlert(alert.ID))

		active, err := tdb.GetActiveAlerts(user.ID)
		require.NoError(t, err)
		assert.Empty(t, active)

		got, err := tdb.GetRiskAlertByID(alert.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		assert.NotNil(t, got.ResolvedAt)
	})

	t.Run("acknowledging keeps the alert active", func(t *testing.T) {
		tdb.TruncateAll(t)
		user, _ := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))

		alert := raise(t, user.ID, models.SeverityHigh)
		require.NoError(t, tdb.AcknowledgeAlert(alert.ID))

		active, err := tdb.GetActiveAlerts(user.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.NotNil(t, active[0].AcknowledgedAt)
		assert.Nil(t, active[0].ResolvedAt)
	})

	t.Run("portfolio scoping filters alerts", func(t *testing.T) {
		tdb.TruncateAll(t)
		user, portfolio := tdb.SeedUserAndPortfolio(t, decimal.NewFromInt(1000))

		scoped := &models.RiskAlert{
			UserID:      user.ID,
			PortfolioID: portfolio.ID,
			AlertType:   models.AlertTypeConcentration,
			Severity:    models.SeverityMedium,
			Message:     "one asset holds most of the portfolio value",
		}
		require.NoError(t, tdb.CreateRiskAlert(scoped))
		raise(t, user.ID, models.SeverityLow) // unscoped

		active, err := tdb.GetActiveAlertsByPortfolio(portfolio.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, scoped.ID, active[0].ID)
	})

	t.Run("unknown alert ids error on acknowledge and resolve", func(t *testing.T) {
		tdb.TruncateAll(t)
		id := "00000000-0000-0000-0000-000000000000"
		assert.Error(t, tdb.AcknowledgeAlert(id))
		assert.Error(t, tdb.ResolveAlert(id))
	})
}
