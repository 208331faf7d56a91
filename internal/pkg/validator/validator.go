package validator

// Validator validates a struct against its `validate` tags.
type Validator interface {
	Validate(data any) error
}
