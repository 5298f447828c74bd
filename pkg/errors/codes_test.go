package errors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "record rejected", DefaultMessageForCode(ErrCodeRecordRejected))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsConfigurationCode(t *testing.T) {
	assert.True(t, IsConfigurationCode(ErrCodeConfiguration))
	assert.True(t, IsConfigurationCode(ErrCodeDimensionMismatch))
	assert.True(t, IsConfigurationCode(ErrCodeInputMissing))
	assert.False(t, IsConfigurationCode(ErrCodeDatasetIO))
	assert.False(t, IsConfigurationCode(ErrCodeRecordRejected))
}

func TestIsRetryableCode(t *testing.T) {
	assert.True(t, IsRetryableCode(ErrCodeRemoteTransient))
	assert.True(t, IsRetryableCode(ErrCodeTooManyRequests))
	assert.False(t, IsRetryableCode(ErrCodeRemoteRejected))
	assert.False(t, IsRetryableCode(ErrCodeRecordRejected))
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCodeFor(CodeOK))
	assert.Equal(t, ExitConfiguration, ExitCodeFor(ErrCodeDimensionMismatch))
	assert.Equal(t, ExitFailure, ExitCodeFor(ErrCodeDatasetIO))
}

func TestAllCodesHaveMessagesAndFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]+_\d{3}$`)
	for code, msg := range ErrorCodeMessage {
		assert.Regexp(t, pattern, string(code))
		assert.NotEmpty(t, msg, "code %s has no message", code)
	}
}

//Personal.AI order the ending
