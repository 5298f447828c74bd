package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// New / Wrap
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal", errors.CodeInternal, "unexpected failure"},
		{"record rejected", errors.ErrCodeRecordRejected, "missing identifier"},
		{"dimension", errors.ErrCodeDimensionMismatch, "768 vs 384"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	ae := errors.Newf(errors.ErrCodeDimensionMismatch, "expected %d got %d", 2, 3)
	assert.Equal(t, "expected 2 got 3", ae.Message)
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "ignored"))
	assert.Nil(t, errors.Wrapf(nil, errors.CodeInternal, "ignored %d", 1))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("disk full")
	ae := errors.Wrap(root, errors.ErrCodeDatasetIO, "append chunk")

	require.NotNil(t, ae)
	assert.True(t, stderrors.Is(ae, root))
	assert.Equal(t, root, stderrors.Unwrap(ae))
	assert.Contains(t, ae.Error(), "disk full")
}

func TestWrap_UnknownCodeKeepsOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeRecordRejected, "bad json")
	outer := errors.Wrap(inner, errors.CodeUnknown, "detail fetch")

	assert.Equal(t, errors.ErrCodeRecordRejected, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error() formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeInputMissing, "embedding file missing")
	assert.Equal(t, "[RNK_004] embedding file missing", ae.Error())

	withDetail := ae.WithDetail("path=diseases.csv")
	assert.Equal(t, "[RNK_004] embedding file missing: path=diseases.csv", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWithDetail_NilReceiver(t *testing.T) {
	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("y")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesForeignWrappers(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeDimensionMismatch, "mismatch")
	mid := fmt.Errorf("rank: %w", inner)
	outer := errors.Wrap(mid, errors.CodeInternal, "run")

	assert.True(t, errors.IsCode(outer, errors.CodeInternal))
	assert.True(t, errors.IsCode(outer, errors.ErrCodeDimensionMismatch))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeDatasetIO))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeDatasetIO,
		errors.GetCode(fmt.Errorf("x: %w", errors.New(errors.ErrCodeDatasetIO, "y"))))
}

func TestIs_MatchesByCode(t *testing.T) {
	sentinel := &errors.AppError{Code: errors.ErrCodeRecordRejected}
	err := fmt.Errorf("wrap: %w", errors.New(errors.ErrCodeRecordRejected, "missing smiles"))

	assert.True(t, stderrors.Is(err, sentinel))
	assert.False(t, stderrors.Is(err, &errors.AppError{Code: errors.ErrCodeDatasetIO}))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, errors.ExitCode(nil))
	assert.Equal(t, 2, errors.ExitCode(errors.Configuration("top_n must be positive")))
	assert.Equal(t, 2, errors.ExitCode(fmt.Errorf("rank: %w",
		errors.New(errors.ErrCodeDimensionMismatch, "x"))))
	assert.Equal(t, 1, errors.ExitCode(errors.New(errors.ErrCodeDatasetIO, "x")))
	assert.Equal(t, 1, errors.ExitCode(stderrors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, errors.IsRetryable(errors.New(errors.ErrCodeRemoteTransient, "503")))
	assert.False(t, errors.IsRetryable(errors.RecordRejected("bad")))
	assert.False(t, errors.IsRetryable(nil))
}

//Personal.AI order the ending
