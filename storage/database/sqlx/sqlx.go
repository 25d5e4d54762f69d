package sqlxrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/haid/charityconnect/core"
)

// postgres error codes
const (
	foreignKeyViolation       = "23503"
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// constraints
const paymentIntentConstraint = "monetary_donations_stripe_payment_intent_id_key"

func pqErrorCode(err error) pq.ErrorCode {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code
	}
	return ""
}

func isForeignKeyViolation(err error) bool {
	return pqErrorCode(err) == foreignKeyViolation
}

// isUniqueViolation reports whether `err` violates the unique `constraint`.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}

// isInvalidTextRepresentation reports whether Postgres rejected an input value, eg. a malformed UUID.
func isInvalidTextRepresentation(err error) bool {
	return pqErrorCode(err) == invalidTextRepresentation
}

// where accumulates AND-ed conditions with positional args.
type where struct {
	conds []string
	args  []interface{}
}

// add appends `cond`, where every "?" stands for the next arg.
func (w *where) add(cond string, args ...interface{}) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, "("+cond+")")
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders `ordering` using the allowed `columns` ({field: column}); unknown fields are skipped.
func orderBy(ordering []core.DBOrdering, columns map[string]string, fallback string) string {
	list := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if col, ok := columns[ord.Field]; ok {
			list = append(list, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	list = append(list, fallback)
	return " ORDER BY " + strings.Join(list, ", ")
}

// withTx runs `fn` inside a transaction, committed only when `fn` succeeds.
func withTx(ctx context.Context, db core.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}
