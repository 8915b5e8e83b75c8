// Package sheets exports report summaries to spreadsheets.
package sheets

import (
	"context"
)

// Ports for outbound adapters.
type (
	// SummaryWriter replaces the content of one summary sheet.
	SummaryWriter interface {
		WriteSummary(ctx context.Context, s Summary) (ref string, err error)
	}
)
