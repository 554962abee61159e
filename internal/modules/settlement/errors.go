package settlement

import "errors"

var (
	ErrValidation = errors.New("invalid line item")
)
