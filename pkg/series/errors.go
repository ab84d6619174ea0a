package series

import "fmt"

// APIError is returned when the series API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("series api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("series api returned status %d: %s", e.StatusCode, e.Message)
}

type apiErrorBody struct {
	Code    interface{} `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
}
