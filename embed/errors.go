package embed

import "errors"

var (
	ErrNilNode     = errors.New("nil source node")
	ErrErrorNode   = errors.New("source node is an error node")
	ErrInvalidUTF8 = errors.New("markup is not valid UTF-8")
	ErrNulByte     = errors.New("markup contains a NUL byte")
	ErrTooLarge    = errors.New("markup exceeds the size limit")

	// ErrEmptyBody is returned by Build when there is no body to embed.
	ErrEmptyBody = errors.New("comment body is empty")
)

// ParseError reports source markup that could not be turned into a tree.
// No partial output accompanies it.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "embed: parse error: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
