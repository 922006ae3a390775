package types

// ErrorBody is returned for every non-2xx response; clients surface Message.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
