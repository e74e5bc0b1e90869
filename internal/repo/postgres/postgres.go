package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/motorline/marketplace/internal/observability"
)

// observe funnels a logical repo operation through the prometheus DB
// instrumentation when metrics are wired.
func observe(m *observability.Prom, op string, fn func() error) error {
	if m == nil {
		return fn()
	}

	return m.ObserveDB(op, fn)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError

	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}

	return constraint == "" || pgErr.ConstraintName == constraint
}
