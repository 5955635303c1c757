package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	exclusion := &pq.Error{Code: CodeExclusionViolation, Constraint: "reservation_machine_no_overlap"}
	wrapped := fmt.Errorf("insert reservation: %w", exclusion)

	assert.Equal(t, CodeExclusionViolation, Code(wrapped))
	assert.True(t, IsExclusionViolation(wrapped))
	assert.False(t, IsUniqueViolation(wrapped))

	assert.True(t, IsUniqueViolation(&pq.Error{Code: CodeUniqueViolation}))
	assert.Empty(t, Code(errors.New("connection refused")))
	assert.False(t, IsExclusionViolation(nil))
}
