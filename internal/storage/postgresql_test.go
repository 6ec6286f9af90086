package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsBalanceViolation(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "negative balance", err: &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "accounts_coins_check"}, want: true},
		{name: "wrapped", err: fmt.Errorf("scan: %w", &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "accounts_coins_check"}), want: true},
		{name: "level formula", err: &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "accounts_level_check"}},
		{name: "negative xp", err: &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "accounts_xp_check"}},
		{name: "other code", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "accounts_coins_check"}},
		{name: "plain error", err: errors.New("connection reset")},
		{name: "nil", err: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isBalanceViolation(tc.err))
		})
	}
}
