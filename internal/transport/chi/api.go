package chi

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeRateLimited      ErrorCode = "rate_limited"
	ErrorCodeNotImplemented   ErrorCode = "not_implemented"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ListUsersParams are the query parameters of GET /api/users. List
// parameters repeat (langs=en&langs=es); availability is a JSON array of
// {"from":<epoch ms>,"to":<epoch ms>} windows.
type ListUsersParams struct {
	Aspect       *string  `json:"aspect" validate:"omitempty,oneof=mentoring tutoring"`
	Subjects     []string `json:"subjects" validate:"max=64,dive,required"`
	Langs        []string `json:"langs" validate:"max=64,dive,required"`
	Checks       []string `json:"checks" validate:"max=64,dive,required"`
	Orgs         []string `json:"orgs" validate:"max=64,dive,required"`
	Tags         []string `json:"tags" validate:"max=64,dive,required"`
	Visible      *bool    `json:"visible"`
	Availability *string  `json:"availability"`
	Page         *int     `json:"page" validate:"omitempty,min=0"`
	HitsPerPage  *int     `json:"hitsPerPage" validate:"omitempty,min=1"`
}

// TimeslotParam is one availability window in epoch milliseconds.
type TimeslotParam struct {
	From int64 `json:"from" validate:"min=0"`
	To   int64 `json:"to" validate:"gtefield=From"`
}

type availabilityParam struct {
	Slots []TimeslotParam `json:"availability" validate:"max=32,dive"`
}
