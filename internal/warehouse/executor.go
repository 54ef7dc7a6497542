package warehouse

import (
	"context"
	"fmt"
	"strings"
)

// Executor runs one generated statement and classifies the result shape.
// Callers must have handled the empty-SQL "cannot answer" signal already.
type Executor struct{}

func (Executor) Execute(ctx context.Context, q Querier, sqlText string) (Result, error) {
	if strings.TrimSpace(sqlText) == "" {
		return Result{}, fmt.Errorf("sql statement is empty")
	}

	rows, err := q.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("read result columns: %w", err)
	}

	var materialized [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return Result{}, fmt.Errorf("scan result row: %w", err)
		}
		for i, value := range values {
			if raw, ok := value.([]byte); ok {
				values[i] = string(raw)
			}
		}
		materialized = append(materialized, values)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterate result rows: %w", err)
	}

	if len(materialized) == 0 {
		return Result{Kind: ResultEmpty, Columns: columns}, nil
	}
	if len(columns) == 1 && len(materialized) == 1 {
		return Result{Kind: ResultScalar, Columns: columns, Scalar: materialized[0][0]}, nil
	}

	mapped := make([]map[string]any, 0, len(materialized))
	for _, row := range materialized {
		entry := make(map[string]any, len(columns))
		for i, column := range columns {
			entry[column] = row[i]
		}
		mapped = append(mapped, entry)
	}
	return Result{Kind: ResultTable, Columns: columns, Rows: mapped}, nil
}
