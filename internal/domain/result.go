package domain

// ResultType tags the outcome of an analyst run.
type ResultType string

const (
	// ResultClarification means the model asked a follow-up question instead
	// of producing SQL.
	ResultClarification ResultType = "clarification"
	// ResultError means the pipeline failed; Text carries a user-facing message.
	ResultError ResultType = "error"
	// ResultData means a query executed; Text points at the attached file.
	ResultData ResultType = "result"
)

// AnalystResult is the tagged outcome of one analyst request. Image is an
// optional PNG chart and is only ever set for ResultData.
type AnalystResult struct {
	Type  ResultType
	Text  string
	Image []byte
}
