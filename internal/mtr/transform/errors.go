package transform

import "errors"

// ErrShape is returned when an input tensor does not fit the pipeline.
var ErrShape = errors.New("invalid tensor shape")
