package enums

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeTokenNotFound      ErrorCode = "AUTH_007"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_008"
	ErrorCodeResourceNotFound   ErrorCode = "RES_001"
	ErrorCodeConflict           ErrorCode = "RES_004"
	ErrorCodeValidationFailed   ErrorCode = "VAL_001"
	ErrorCodeInternalServer     ErrorCode = "SRV_001"
	ErrorCodeDatabaseError      ErrorCode = "SRV_002"
	ErrorCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrorCodeTooManyRequests    ErrorCode = "RATE_001"
)
