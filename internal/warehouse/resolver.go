package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/firmsight/firmsight/internal/catalog"
)

// Querier is the slice of database/sql needed per request. Both *sql.DB and a
// request-scoped *sql.Conn satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Resolver reads the tenant's view schemas from warehouse metadata. There is
// no caching: every request sees the warehouse as it is right now.
type Resolver struct{}

// Resolve lists the vw_-prefixed views of the tenant schema and their columns
// in declaration order. An unknown tenant yields an empty catalog rather than
// an error; only metadata-query failures propagate.
func (Resolver) Resolve(ctx context.Context, q Querier, tenantID string) (catalog.Catalog, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	viewsQuery := `
SELECT TABLE_SCHEMA, TABLE_NAME
FROM INFORMATION_SCHEMA.VIEWS
WHERE TABLE_SCHEMA = @tenant
  AND TABLE_NAME LIKE 'vw_%'`

	rows, err := q.QueryContext(ctx, viewsQuery, sql.Named("tenant", tenantID))
	if err != nil {
		return nil, fmt.Errorf("list tenant views: %w", err)
	}
	defer func() { _ = rows.Close() }()

	type qualifiedView struct {
		schema string
		name   string
	}
	var views []qualifiedView
	for rows.Next() {
		var view qualifiedView
		if err := rows.Scan(&view.schema, &view.name); err != nil {
			return nil, fmt.Errorf("scan view row: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate view rows: %w", err)
	}

	cat := catalog.Catalog{}
	for _, view := range views {
		columns, err := resolveColumns(ctx, q, view.schema, view.name)
		if err != nil {
			return nil, err
		}
		cat[catalog.QualifiedViewName(view.schema, view.name)] = columns
	}
	return cat, nil
}

func resolveColumns(ctx context.Context, q Querier, schema, view string) ([]catalog.Column, error) {
	columnsQuery := `
SELECT COLUMN_NAME, DATA_TYPE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @schema
  AND TABLE_NAME = @view
ORDER BY ORDINAL_POSITION`

	rows, err := q.QueryContext(ctx, columnsQuery, sql.Named("schema", schema), sql.Named("view", view))
	if err != nil {
		return nil, fmt.Errorf("list columns for %s.%s: %w", schema, view, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []catalog.Column
	for rows.Next() {
		var column catalog.Column
		if err := rows.Scan(&column.Name, &column.Type); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	return columns, nil
}
