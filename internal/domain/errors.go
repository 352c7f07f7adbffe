package domain

import "errors"

// ErrInsufficientData is returned when a product has fewer than the minimum
// number of usable daily sales rows inside the lookback window. It is a
// recoverable outcome ("not enough history yet"), not a system fault.
var ErrInsufficientData = errors.New("insufficient sales data")

// MinTrainingRows is the minimum number of usable daily rows required to
// train or build features.
const MinTrainingRows = 7
