package warehouse

// ResultKind tags the shape of an executed query result.
type ResultKind string

const (
	ResultEmpty  ResultKind = "empty"
	ResultScalar ResultKind = "scalar"
	ResultTable  ResultKind = "table"
)

// Result is the classified outcome of one executed statement. Exactly one
// shape applies: Empty carries nothing, Scalar carries the single value, and
// Table carries the ordered column list plus one name-to-value map per row.
type Result struct {
	Kind    ResultKind
	Columns []string
	Scalar  any
	Rows    []map[string]any
}

// Payload renders the result the way the answer-compilation prompt expects
// it: a small tagged document rather than raw driver rows.
func (r Result) Payload() map[string]any {
	switch r.Kind {
	case ResultScalar:
		return map[string]any{"type": string(ResultScalar), "data": r.Scalar}
	case ResultTable:
		return map[string]any{"type": string(ResultTable), "columns": r.Columns, "data": r.Rows}
	default:
		return map[string]any{"type": string(ResultEmpty), "data": []any{}}
	}
}
