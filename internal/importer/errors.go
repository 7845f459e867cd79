package importer

import "errors"

// Messages are shown to admins as-is.
var (
	// ErrMissingID marks a record without a usable "id".
	ErrMissingID = errors.New(`MP data missing required "id" field.`)

	// ErrNoPreviewData is returned when the preview sample is empty.
	ErrNoPreviewData = errors.New("No MP data found in API response.")
)
