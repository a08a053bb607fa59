package content

import "errors"

var (
	// ErrEmpty is returned by Warm when the loader produced no items.
	ErrEmpty = errors.New("no content generated")

	// ErrUnknownKind is returned for an unrecognized content kind.
	ErrUnknownKind = errors.New("unknown content kind")
)
