package model

// Status is the outcome of a criteria run.
// The string values are the ones written to JSON reports and the database.
type Status string

const (
	// StatusOK means the criteria found nothing to report.
	StatusOK Status = "ok"

	// StatusKO means the criteria is not met.
	// The built-in criteria never produce it: their findings need a human
	// review, so they report StatusWarning instead.
	StatusKO Status = "ko"

	// StatusWarning means the criteria collected evidence that must be reviewed.
	StatusWarning Status = "warning"
)

// String returns the status value.
func (s Status) String() string {
	return string(s)
}

// Icon returns the visual indicator used in console and Markdown output.
func (s Status) Icon() string {
	switch s {
	case StatusOK:
		return "✅"
	case StatusKO:
		return "❌"
	default:
		return "⚠️"
	}
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusOK, StatusKO, StatusWarning:
		return true
	default:
		return false
	}
}

// statusFromEvidence maps an evidence count to a status.
// Evidence never yields StatusKO.
func statusFromEvidence(count int) Status {
	if count == 0 {
		return StatusOK
	}
	return StatusWarning
}
