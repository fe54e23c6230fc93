package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("save record: %w", Remote("save", cause))

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindRemote, e.Kind)
	assert.Equal(t, "save_failed", e.Code)
	assert.Equal(t, "connection refused", e.Message)
	assert.ErrorIs(t, err, cause)
}

func TestValidationStatus(t *testing.T) {
	e := Validation("지원자명을 입력해주세요.")
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "지원자명을 입력해주세요.", e.Error())
	assert.True(t, IsKind(e, KindValidation))
	assert.False(t, IsKind(errors.New("x"), KindValidation))
}
