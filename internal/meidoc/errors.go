package meidoc

import "errors"

var (
	// ErrStructure indicates the document lacks an element the extractor needs,
	// such as the music root or a measure after a score definition.
	ErrStructure = errors.New("unexpected document structure")

	// ErrMixedMeter indicates a score definition declaring more than one meter.
	ErrMixedMeter = errors.New("mixed meter is not supported")

	// ErrMeterUnresolved indicates no usable meter could be found.
	ErrMeterUnresolved = errors.New("could not resolve meter")
)
