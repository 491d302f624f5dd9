package services

// ServiceError represents a typed error with an HTTP status code.
// The message is safe to show to the caller.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}
