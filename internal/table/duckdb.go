package table

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// DefaultDuckDBTable is read when no table name is configured.
const DefaultDuckDBTable = "predictions"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open loads the dataset at path, picking the loader from the file extension:
// .ddb and .duckdb files are read from duckTable, anything else as JSON.
func Open(ctx context.Context, path, duckTable string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ddb", ".duckdb":
		return LoadDuckDB(ctx, path, duckTable)
	default:
		return LoadJSON(path)
	}
}

// LoadDuckDB reads every row of tableName from the DuckDB file at dbPath.
func LoadDuckDB(ctx context.Context, dbPath, tableName string) (*Table, error) {
	if tableName == "" {
		tableName = DefaultDuckDBTable
	}
	// The name is interpolated into SQL, so only plain identifiers pass.
	if !identPattern.MatchString(tableName) {
		return nil, loadErr(dbPath, fmt.Errorf("invalid table name %q", tableName))
	}

	db, err := sql.Open("duckdb", dbPath+"?access_mode=read_only")
	if err != nil {
		return nil, loadErr(dbPath, err)
	}
	defer db.Close()

	query := fmt.Sprintf(`
        SELECT "Gene", "Feature", "Cancer", "Target", "Type", "Value", "Gini", "R"
        FROM %s
    `, tableName)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, loadErr(dbPath, err)
	}
	defer rows.Close()

	out := []Row{}
	for i := 0; rows.Next(); i++ {
		var (
			strs [5]sql.NullString
			nums [3]sql.NullFloat64
		)
		if err := rows.Scan(&strs[0], &strs[1], &strs[2], &strs[3], &strs[4], &nums[0], &nums[1], &nums[2]); err != nil {
			return nil, &LoadError{Source: dbPath, Row: i, Err: err}
		}
		for j, s := range strs {
			if !s.Valid {
				return nil, &LoadError{Source: dbPath, Row: i, Field: stringFields[j], Err: ErrMissingField}
			}
		}
		for j, n := range nums {
			if !n.Valid {
				return nil, &LoadError{Source: dbPath, Row: i, Field: numberFields[j], Err: ErrMissingField}
			}
		}
		out = append(out, Row{
			Gene:    strs[0].String,
			Feature: strs[1].String,
			Cancer:  strs[2].String,
			Target:  strs[3].String,
			Type:    strs[4].String,
			Value:   nums[0].Float64,
			Gini:    nums[1].Float64,
			R:       nums[2].Float64,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, loadErr(dbPath, err)
	}
	return New(out), nil
}
