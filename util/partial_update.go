package util

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Field is one column assignment in a partial update. A nil Value writes NULL.
type Field struct {
	Column string
	Value  interface{}
}

// BuildPartialUpdate builds "UPDATE <table> SET a = ?, b = ? WHERE <id> = ?"
// for exactly the given fields, in order. Identifiers are trusted code
// constants; values are always bound.
func BuildPartialUpdate(table, idColumn string, idValue interface{}, fields []Field) (string, []interface{}, error) {
	return buildPartialUpdate(func(s string) string { return s }, table, idColumn, idValue, fields)
}

func buildPartialUpdate(quote func(string) string, table, idColumn string, idValue interface{}, fields []Field) (string, []interface{}, error) {
	if len(fields) == 0 {
		return "", nil, ErrNoFieldsProvided
	}
	sets := make([]string, 0, len(fields))
	params := make([]interface{}, 0, len(fields)+1)
	for _, f := range fields {
		sets = append(sets, quote(f.Column)+" = ?")
		params = append(params, f.Value)
	}
	params = append(params, idValue)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", quote(table), strings.Join(sets, ", "), quote(idColumn))
	return sql, params, nil
}

// ExecPartialUpdate runs a partial update against db, quoting identifiers for
// its dialect. It returns ErrNotFound when no row matched idValue.
func ExecPartialUpdate(db *gorm.DB, table, idColumn string, idValue interface{}, fields []Field) error {
	quote := func(name string) string { return db.Statement.Quote(name) }
	sql, params, err := buildPartialUpdate(quote, table, idColumn, idValue, fields)
	if err != nil {
		return err
	}
	res := db.Exec(sql, params...)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
