package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	pingErr      error
	version      string
	versionErr   error
	installed    bool
	hypertables  int
	timescaleErr error
	counts       map[string]int64
	countsErr    error
}

func (s *stubChecker) Ping(ctx context.Context) error { return s.pingErr }

func (s *stubChecker) ServerVersion(ctx context.Context) (string, error) {
	return s.version, s.versionErr
}

func (s *stubChecker) TimescaleStatus(ctx context.Context) (bool, int, error) {
	return s.installed, s.hypertables, s.timescaleErr
}

func (s *stubChecker) TableRowCounts(ctx context.Context) (map[string]int64, error) {
	return s.counts, s.countsErr
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy when database and timescale are up", func(t *testing.T) {
		probe := NewProbe(&stubChecker{
			version:     "PostgreSQL 15.7",
			installed:   true,
			hypertables: 5,
			counts:      map[string]int64{"positions": 12},
		})

		report := probe.Check(ctx)
		assert.Equal(t, StatusHealthy, report.Status)
		assert.Equal(t, ExtensionEnabled, report.Timescale)
		assert.Equal(t, 5, report.Hypertables)
		assert.Equal(t, "PostgreSQL 15.7", report.DatabaseVersion)
		assert.Equal(t, int64(12), report.TableCounts["positions"])
		assert.Empty(t, report.Error)
	})

	t.Run("unhealthy when the database is unreachable", func(t *testing.T) {
		probe := NewProbe(&stubChecker{pingErr: assert.AnError})

		report := probe.Check(ctx)
		assert.Equal(t, StatusUnhealthy, report.Status)
		assert.NotEmpty(t, report.Error)
	})

	t.Run("degraded when the extension is missing", func(t *testing.T) {
		probe := NewProbe(&stubChecker{version: "PostgreSQL 15.7", installed: false})

		report := probe.Check(ctx)
		assert.Equal(t, StatusDegraded, report.Status)
		assert.Equal(t, ExtensionMissing, report.Timescale)
	})

	t.Run("degraded when installed but no hypertables exist", func(t *testing.T) {
		probe := NewProbe(&stubChecker{installed: true, hypertables: 0})

		report := probe.Check(ctx)
		assert.Equal(t, StatusDegraded, report.Status)
		assert.Equal(t, ExtensionDisabled, report.Timescale)
	})

	t.Run("side checks failing never fail the probe", func(t *testing.T) {
		probe := NewProbe(&stubChecker{
			installed:   true,
			hypertables: 3,
			versionErr:  assert.AnError,
			countsErr:   assert.AnError,
		})

		report := probe.Check(ctx)
		assert.Equal(t, StatusHealthy, report.Status)
		assert.Empty(t, report.DatabaseVersion)
		assert.Nil(t, report.TableCounts)
	})
}
