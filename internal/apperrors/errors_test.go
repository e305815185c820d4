package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/netsession/internal/protocol"
)

func TestWrap_MatchesBaseByCode(t *testing.T) {
	t.Parallel()

	err := Wrap(ErrSettingKeyMissing, "key %q", "MAPNAME")

	assert.ErrorIs(t, err, ErrSettingKeyMissing)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
	assert.Contains(t, err.Error(), `key "MAPNAME"`)
	assert.Equal(t, protocol.ErrCodeSettingKeyMissing, Code(err))
}

func TestCode_Unknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, protocol.ErrCodeUnknown, Code(errors.New("boom")))
	assert.Equal(t, protocol.ErrCodeProviderUnavailable, Code(ErrProviderUnavailable))
}
