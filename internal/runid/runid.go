// Package runid mints the opaque per-process run identifier written in the
// CLI's start and stop log lines and attached to every report.Summary, so
// multiple simulator processes
// writing to a shared report store stay distinguishable — the same role
// internal/platform.EvolutionConfig's RunID field plays for the teacher's
// evolution runs.
package runid

import "github.com/google/uuid"

// New returns a fresh run identifier.
func New() string {
	return uuid.NewString()
}
