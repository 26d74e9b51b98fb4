package report

import "errors"

var (
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
	ErrInvalidYear   = errors.New("year must be a valid year")
	ErrReportFetch   = errors.New("failed to fetch the month report")
	ErrEventRejected = errors.New("month-report item rejected during normalization")
)
