// Package sheets defines the outbound ports for spreadsheet export.
package sheets

import (
	"context"

	"spendlog/internal/core"
)

type (
	// ExpenseWriter appends one expense row and returns a reference to it.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// ExpenseDeleter removes the row previously written for the given id.
	ExpenseDeleter interface {
		Delete(ctx context.Context, id int64) error
	}
)

// Exporter is the full adapter surface the sync worker drives.
type Exporter interface {
	ExpenseWriter
	ExpenseDeleter
}
