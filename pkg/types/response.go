package types

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Page is the pagination block attached to list responses.
type Page struct {
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Acknowledgement is returned by mutations that carry no resource.
type Acknowledgement struct {
	Success bool `json:"success"`
}
