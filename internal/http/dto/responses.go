package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type NeedDeedResponse struct {
	DeedID   string `json:"deed_id"`
	PledgeID string `json:"pledge_id"`
}

type AssignmentCreatedResponse struct {
	AssignmentID     string `json:"assignment_id"`
	AssignmentDeedID string `json:"assignment_deed_id"`
}

type VerifyResponse struct {
	Match        bool   `json:"match"`
	StoredHash   string `json:"stored_hash"`
	ComputedHash string `json:"computed_hash"`
}

type SignerProgressResponse struct {
	Signed int  `json:"signed"`
	Total  int  `json:"total"`
	Done   bool `json:"done"`
}
