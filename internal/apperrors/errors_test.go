package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := Validationf("code %q must be numeric", "12a")
	assert.True(t, errors.Is(err, KindValidation))
	assert.False(t, errors.Is(err, KindNotFound))
	assert.Equal(t, `validation: code "12a" must be numeric`, err.Error())
}

func TestKindMatching_Wrapped(t *testing.T) {
	err := fmt.Errorf("creating account: %w", Duplicatef("code 1100 already exists"))
	assert.True(t, IsDuplicate(err))
	assert.False(t, IsValidation(err))
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NotFoundf("account %s", "x")))
	assert.True(t, IsStateConflict(StateConflictf("already posted")))
	assert.False(t, IsNotFound(errors.New("plain")))
}
