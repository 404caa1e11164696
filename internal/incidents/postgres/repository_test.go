package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsMalformedID(t *testing.T) {
	malformed := &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}

	assert.True(t, isMalformedID(malformed))
	assert.True(t, isMalformedID(fmt.Errorf("get incident by id: %w", malformed)))

	assert.False(t, isMalformedID(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isMalformedID(errors.New("connection reset")))
	assert.False(t, isMalformedID(nil))
}
