package db_test

import (
	"testing"

	"github.com/gnames/gnbundle/internal/iodb"
	"github.com/gnames/gnbundle/pkg/db"
	"github.com/stretchr/testify/assert"
)

// TestOperatorContract verifies that iodb.NewOperator
// implements the db.Operator interface.
func TestOperatorContract(t *testing.T) {
	var op db.Operator = iodb.NewOperator()
	assert.Nil(t, op.DB())
}
