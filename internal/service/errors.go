package service

type ErrorCode string

const (
	ErrorCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrorCodeTeamFull           ErrorCode = "TEAM_FULL"
	ErrorCodePositionOccupied   ErrorCode = "POSITION_OCCUPIED"
	ErrorCodeEmailExists        ErrorCode = "EMAIL_EXISTS"
	ErrorCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrorCodeInvalidBody        ErrorCode = "INVALID_BODY"
	ErrorCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrorCodeUnspecified        ErrorCode = "UNSPECIFIED"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`

	// Fields carries the per-field messages of a validation failure.
	Fields map[string]string `json:"fields,omitempty"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{
		Code:    ErrorCodeInvalidBody,
		Message: message,
		Fields:  fields,
	}
}

func (e *Error) Error() string {
	return e.Message
}
