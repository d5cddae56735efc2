// Package health reports the service's view of its own dependencies. The
// probe never returns an error: degradation is data, not a failure.
package health

import (
	"context"
	"time"
)

// Overall status constants
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Extension status constants
const (
	ExtensionEnabled  = "enabled"
	ExtensionDisabled = "disabled"
	ExtensionMissing  = "missing"
)

// Checker is the database surface the probe inspects
type Checker interface {
	Ping(ctx context.Context) error
	ServerVersion(ctx context.Context) (string, error)
	TimescaleStatus(ctx context.Context) (bool, int, error)
	TableRowCounts(ctx context.Context) (map[string]int64, error)
}

// Report is the probe's snapshot of dependency health
type Report struct {
	Status          string           `json:"status"`
	DatabaseVersion string           `json:"database_version,omitempty"`
	Timescale       string           `json:"timescale"`
	Hypertables     int              `json:"hypertables"`
	TableCounts     map[string]int64 `json:"table_counts,omitempty"`
	Error           string           `json:"error,omitempty"`
	CheckedAt       time.Time        `json:"checked_at"`
}

// Probe runs health checks against the store
type Probe struct {
	db Checker
}

// NewProbe creates a health probe over the given store
func NewProbe(db Checker) *Probe {
	return &Probe{db: db}
}

// Check inspects the database and returns a report. An unreachable database
// yields an unhealthy report; a reachable one without the timescaledb
// extension yields a degraded report, since the service still works with
// plain tables.
func (p *Probe) Check(ctx context.Context) Report {
	report := Report{
		Status:    StatusHealthy,
		Timescale: ExtensionMissing,
		CheckedAt: time.Now(),
	}

	if err := p.db.Ping(ctx); err != nil {
		report.Status = StatusUnhealthy
		report.Error = err.Error()
		return report
	}

	if version, err := p.db.ServerVersion(ctx); err == nil {
		report.DatabaseVersion = version
	}

	installed, hypertables, err := p.db.TimescaleStatus(ctx)
	switch {
	case err != nil:
		report.Status = StatusDegraded
		report.Error = err.Error()
	case !installed:
		report.Status = StatusDegraded
	case hypertables == 0:
		report.Timescale = ExtensionDisabled
		report.Status = StatusDegraded
	default:
		report.Timescale = ExtensionEnabled
		report.Hypertables = hypertables
	}

	if counts, err := p.db.TableRowCounts(ctx); err == nil {
		report.TableCounts = counts
	}

	return report
}
