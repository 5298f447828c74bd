package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_005"
	ErrCodeTooManyRequests ErrorCode = "COMMON_007"
	ErrCodeTimeout         ErrorCode = "COMMON_009"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeCacheError      ErrorCode = "COMMON_013"
	ErrCodeExternalService ErrorCode = "COMMON_014"
	ErrCodeConfiguration   ErrorCode = "COMMON_017"
	ErrCodeCancelled       ErrorCode = "COMMON_018"
)

// Aliases used at call sites that read better with the short form.
const (
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeRateLimit    = ErrCodeTooManyRequests
)

// Ingestion Module Error Codes
const (
	ErrCodeRemoteTransient ErrorCode = "ING_001"
	ErrCodeRemoteRejected  ErrorCode = "ING_002"
	ErrCodeRecordRejected  ErrorCode = "ING_003"
	ErrCodeDatasetIO       ErrorCode = "ING_004"
)

// Ranking Module Error Codes
const (
	ErrCodeDimensionMismatch  ErrorCode = "RNK_001"
	ErrCodeEnrichmentDegraded ErrorCode = "RNK_002"
	ErrCodeEmbeddingFailed    ErrorCode = "RNK_003"
	ErrCodeInputMissing       ErrorCode = "RNK_004"
)

// Platform Error Codes
const (
	ErrCodePublishFailed ErrorCode = "PLT_001"
	ErrCodeStorageFailed ErrorCode = "PLT_002"
)

// Process exit codes returned by the CLI.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:        "internal error",
	ErrCodeBadRequest:      "bad request",
	ErrCodeNotFound:        "resource not found",
	ErrCodeTooManyRequests: "too many requests",
	ErrCodeTimeout:         "operation timed out",
	ErrCodeValidation:      "validation failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeCacheError:      "cache operation failed",
	ErrCodeExternalService: "external service error",
	ErrCodeConfiguration:   "invalid configuration",
	ErrCodeCancelled:       "operation cancelled",

	ErrCodeRemoteTransient: "remote catalog temporarily unavailable",
	ErrCodeRemoteRejected:  "remote catalog rejected the request",
	ErrCodeRecordRejected:  "record rejected",
	ErrCodeDatasetIO:       "dataset write failed",

	ErrCodeDimensionMismatch:  "embedding dimension mismatch",
	ErrCodeEnrichmentDegraded: "enrichment lookup degraded",
	ErrCodeEmbeddingFailed:    "embedding generation failed",
	ErrCodeInputMissing:       "required input missing",

	ErrCodePublishFailed: "event publication failed",
	ErrCodeStorageFailed: "object storage operation failed",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsConfigurationCode reports whether code denotes a fatal configuration
// problem (bad settings, missing inputs, incompatible embedding spaces).
func IsConfigurationCode(code ErrorCode) bool {
	switch code {
	case ErrCodeConfiguration, ErrCodeDimensionMismatch, ErrCodeInputMissing, ErrCodeValidation:
		return true
	}
	return false
}

// IsRetryableCode reports whether a call that failed with code may succeed
// when repeated unchanged.
func IsRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeRemoteTransient, ErrCodeTooManyRequests, ErrCodeTimeout, ErrCodeExternalService:
		return true
	}
	return false
}

// ExitCodeFor returns the CLI exit status for code.
func ExitCodeFor(code ErrorCode) int {
	switch {
	case code == CodeOK:
		return ExitOK
	case IsConfigurationCode(code):
		return ExitConfiguration
	default:
		return ExitFailure
	}
}

//Personal.AI order the ending
