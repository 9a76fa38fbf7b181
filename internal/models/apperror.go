package models

import "net/http"

// Error codes. Handlers map these to HTTP statuses; clients branch on the
// code, never on the message text.
const (
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeCampaignNotOpen     = "campaign_not_open"
	CodeInvalidItems        = "invalid_items"
	CodeSupplierNotSelected = "supplier_not_selected"
	CodeOfferNotFound       = "offer_not_found"
	CodeNoSignedNeedDeeds   = "no_signed_need_deeds"
	CodeAssignmentExists    = "assignment_already_exists"
	CodeAlreadySigned       = "already_signed"
	CodeDuplicateDispute    = "duplicate_dispute"
	CodeInvalidTransition   = "invalid_transition"
	CodeRateLimited         = "rate_limited"
	CodeInternal            = "internal"
)

// AppError carries an error code, an HTTP status and optional extra response
// fields (e.g. the existing assignment_id on a create conflict).
type AppError struct {
	Code       string
	StatusCode int
	Message    string
	Extra      map[string]any
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code string, statusCode int, message string) *AppError {
	return &AppError{Code: code, StatusCode: statusCode, Message: message}
}

func (e *AppError) WithExtra(key string, value any) *AppError {
	c := *e
	c.Extra = map[string]any{}
	for k, v := range e.Extra {
		c.Extra[k] = v
	}
	c.Extra[key] = value
	return &c
}

func ErrUnauthorized(msg string) *AppError {
	return NewAppError(CodeUnauthorized, http.StatusUnauthorized, msg)
}

func ErrForbidden(msg string) *AppError {
	return NewAppError(CodeForbidden, http.StatusForbidden, msg)
}

// ErrNotFound also covers not-found-or-unauthorized: existence is not leaked
// to callers without rights.
func ErrNotFound(msg string) *AppError {
	return NewAppError(CodeNotFound, http.StatusNotFound, msg)
}

func ErrPrecondition(code, msg string) *AppError {
	return NewAppError(code, http.StatusBadRequest, msg)
}

func ErrConflict(code, msg string) *AppError {
	return NewAppError(code, http.StatusConflict, msg)
}

func ErrInternal(msg string) *AppError {
	return NewAppError(CodeInternal, http.StatusInternalServerError, msg)
}
