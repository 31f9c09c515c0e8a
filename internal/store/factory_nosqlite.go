//go:build !sqlite

package store

import (
	"fmt"

	"rstdpnet/internal/report"
)

func newSQLiteStore(_ string) (report.Store, error) {
	return nil, fmt.Errorf("sqlite report store unavailable in this build; rebuild with -tags sqlite")
}
