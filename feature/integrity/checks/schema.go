package checks

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"payment-integrator/core/database"

	"gorm.io/gorm"
)

// SchemaReport is the result of comparing one store's tables with its models.
type SchemaReport struct {
	Store   string                 `json:"store"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport lists the differences found in one table.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// typeFamilies maps a declared base type to the names dialects report for it.
var typeFamilies = map[string][]string{
	"varchar": {"varchar", "character varying", "text"},
	"decimal": {"decimal", "numeric"},
}

// CheckSchema verifies the tables of db against models, using their gorm tags as the
// source of truth. Every model must implement TableName.
func CheckSchema(db *gorm.DB, store string, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Store:   store,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
		Matched: true,
	}

	for _, model := range models {
		t := reflect.TypeOf(model)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		tabler, ok := reflect.New(t).Interface().(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %s does not implement TableName", t.Name())
		}
		tableName := tabler.TableName()

		actualCols, err := database.GetTableColumns(db, tableName)
		if err == nil && len(actualCols) == 0 {
			err = fmt.Errorf("table not found")
		}
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}

		actual := make(map[string]database.ColumnInfo, len(actualCols))
		for _, col := range actualCols {
			actual[col.Field] = col
		}

		tbl := TableReport{MissingColumns: []string{}, TypeMismatches: []string{}, Status: "ok"}
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("gorm")
			colName := parseGormColumn(tag)
			if colName == "" {
				continue
			}

			col, exists := actual[colName]
			if !exists {
				tbl.MissingColumns = append(tbl.MissingColumns, colName)
				tbl.Status = "error"
				continue
			}

			expType := strings.ToLower(parseGormType(tag))
			if expType != "" && !typeMatches(expType, col.Type) {
				tbl.TypeMismatches = append(tbl.TypeMismatches, fmt.Sprintf("%s: expected %s, got %s", colName, expType, col.Type))
				tbl.Status = "error"
			}
		}
		sort.Strings(tbl.MissingColumns)
		if tbl.Status != "ok" {
			report.Matched = false
		}
		report.Tables[tableName] = tbl
	}

	return report, nil
}

// typeMatches compares base types only; lengths and precision are ignored.
func typeMatches(expected, actual string) bool {
	base := expected
	if i := strings.Index(base, "("); i >= 0 {
		base = base[:i]
	}
	names, ok := typeFamilies[base]
	if !ok {
		names = []string{base}
	}
	for _, n := range names {
		if strings.Contains(actual, n) {
			return true
		}
	}
	return false
}

// Helpers to parse simple gorm tags
func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}
