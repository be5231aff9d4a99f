package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("recommend: %w", Persistence("insert soil test", base))

	var pe *PersistenceError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, "insert soil test", pe.Op)
	assert.ErrorIs(t, err, base)

	var ce *ConflictError
	assert.False(t, errors.As(err, &ce))
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := Validation("invalid soil sample", map[string]string{
		"ph_level": "must be between 0 and 14",
		"nitrogen": "is required",
	})
	assert.Equal(t, "invalid soil sample (nitrogen: is required; ph_level: must be between 0 and 14)", err.Error())
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "listing 7 not found", NotFound("listing", 7).Error())
	assert.Equal(t, "user not found", NotFound("user", nil).Error())
}
