package dto

import "fmt"

// ErrorBody is the uniform error object returned to callers.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an ErrorBody the way the frontend expects it.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Canned error responses. Provider codes/messages are folded into the
// generic messages for diagnostics while keeping the user-facing text
// stable.
var (
	Unauthorized = ErrorResponse{Error: ErrorBody{
		Code:    401,
		Message: "Unauthorized, user not signed in.",
	}}
	YouTubeAPIGenericError = ErrorResponse{Error: ErrorBody{
		Code:    500,
		Message: "Failed to contact YouTube API, please try again.",
	}}
	StorageGenericError = ErrorResponse{Error: ErrorBody{
		Code:    500,
		Message: "Failed to save dashboard data, please try again.",
	}}
	StatsGenericError = ErrorResponse{Error: ErrorBody{
		Code:    500,
		Message: "Failed to load channel stats, please try again.",
	}}
	CatchAllGenericError = ErrorResponse{Error: ErrorBody{
		Code:    500,
		Message: "Something went wrong, please try again.",
	}}
)

// InvalidMethod builds the 405 response for an unsupported verb.
func InvalidMethod(method string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:    405,
		Message: fmt.Sprintf("Method %s Not Allowed", method),
	}}
}

// WithDetail returns a copy of the response carrying a provider code
// and service message appended for diagnostics.
func (r ErrorResponse) WithDetail(code int, serviceMessage string) ErrorResponse {
	if code != 0 {
		r.Error.Code = code
	}
	if serviceMessage != "" {
		r.Error.Message = fmt.Sprintf("%s (%s)", r.Error.Message, serviceMessage)
	}
	return r
}
