package format

import "errors"

// ErrUnknownTag indicates a tag name outside the four known tags.
var ErrUnknownTag = errors.New("format: unrecognized tag")
