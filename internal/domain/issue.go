package domain

// IssueKind classifies a parse issue.
type IssueKind string

const (
	// IssueKindStructural covers malformed and non-object JSON lines.
	IssueKindStructural IssueKind = "structural"
	// IssueKindValidation covers records rejected by an adapter in strict mode.
	IssueKindValidation IssueKind = "validation"
)

// ParseIssue describes one raw line that could not become an envelope.
type ParseIssue struct {
	Message         string    `json:"message"`
	InputFile       string    `json:"input_file"`
	InputLineNumber int       `json:"input_line_number"`
	RawLine         string    `json:"raw_line"`
	Kind            IssueKind `json:"-"`
}
