package amounts

import "errors"

var (
	// ErrEmptyResponse means the provider returned no usable text.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrNoDocument means the request carried no document content.
	ErrNoDocument = errors.New("no document provided")
)

// InvalidJSONError carries model output that could not be parsed.
type InvalidJSONError struct {
	Raw string
}

func (e *InvalidJSONError) Error() string {
	return "invalid JSON returned by model"
}
