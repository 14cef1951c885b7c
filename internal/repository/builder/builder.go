package builder

import (
	"fmt"
	"strings"
)

// PlaceholderFormat decides how "?" markers are rendered in the final SQL.
type PlaceholderFormat int

const (
	// Dollar renders $1, $2, ... (PostgreSQL).
	Dollar PlaceholderFormat = iota
	// Question keeps ? markers (MySQL, SQLite).
	Question
)

// Replace rewrites every "?" in sql, numbering from start.
// It returns the rewritten SQL and the next number to use.
func (f PlaceholderFormat) Replace(sql string, start int) (string, int) {
	if f == Question {
		return sql, start + strings.Count(sql, "?")
	}
	var sb strings.Builder
	n := start
	for _, r := range sql {
		if r == '?' {
			fmt.Fprintf(&sb, "$%d", n)
			n++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String(), n
}

// Rebind rewrites a whole statement written with "?" markers.
func (f PlaceholderFormat) Rebind(sql string) string {
	out, _ := f.Replace(sql, 1)
	return out
}

// SQLBuilder helps construct SQL queries dynamically.
type SQLBuilder struct {
	format     PlaceholderFormat
	table      string
	columns    []string
	values     []interface{}
	setArgs    []interface{}
	where      []string
	whereArgs  []interface{}
	joins      []string
	groupBy    []string
	orderBy    []string
	suffix     string
	limit      int
	offset     int
	updateCols []string
	isInsert   bool
	isUpdate   bool
	isDelete   bool
	isSelect   bool

	orConditions  []condition
	whereGroups   []*SQLBuilder
	rawConditions []condition
}

// condition is a SQL fragment with its arguments
type condition struct {
	sql  string
	args []interface{}
}

// NewSQLBuilder creates a builder that renders $N placeholders.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{format: Dollar}
}

// New creates a builder for the given placeholder format.
func New(format PlaceholderFormat) *SQLBuilder {
	return &SQLBuilder{format: format}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.isSelect = true
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.isInsert = true
	b.table = table
	b.columns = cols
	return b
}

// Update specifies the table to update.
func (b *SQLBuilder) Update(table string) *SQLBuilder {
	b.isUpdate = true
	b.table = table
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.isDelete = true
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Set specifies the columns and values for update.
func (b *SQLBuilder) Set(col string, val interface{}) *SQLBuilder {
	b.updateCols = append(b.updateCols, col)
	b.setArgs = append(b.setArgs, val)
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// Where adds a condition to the query. Multiple Where calls are joined with AND.
func (b *SQLBuilder) Where(cond string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, cond)
	b.whereArgs = append(b.whereArgs, args...)
	return b
}

// Join adds a JOIN clause.
func (b *SQLBuilder) Join(joinType, table, on string) *SQLBuilder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s ON %s", joinType, table, on))
	return b
}

// GroupBy adds a GROUP BY clause.
func (b *SQLBuilder) GroupBy(cols ...string) *SQLBuilder {
	b.groupBy = append(b.groupBy, cols...)
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// Suffix appends a raw clause after the statement body, e.g. ON CONFLICT or RETURNING.
func (b *SQLBuilder) Suffix(clause string) *SQLBuilder {
	b.suffix = clause
	return b
}

// Or adds an OR condition to the query.
func (b *SQLBuilder) Or(cond string, args ...interface{}) *SQLBuilder {
	b.orConditions = append(b.orConditions, condition{sql: cond, args: args})
	return b
}

// WhereGroup adds a grouped (parenthesized) WHERE condition.
// The provided function receives a new SQLBuilder for building the grouped conditions.
func (b *SQLBuilder) WhereGroup(fn func(*SQLBuilder) *SQLBuilder) *SQLBuilder {
	b.whereGroups = append(b.whereGroups, fn(New(b.format)))
	return b
}

// WhereRaw adds a raw SQL condition with arguments.
func (b *SQLBuilder) WhereRaw(sql string, args ...interface{}) *SQLBuilder {
	b.rawConditions = append(b.rawConditions, condition{sql: sql, args: args})
	return b
}

// BuildSafe constructs the final SQL string and arguments with safety validation.
// Returns an error if the number of placeholders doesn't match the number of arguments.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	sql, args := b.Build()

	placeholderCount := strings.Count(sql, "?")
	if b.format == Dollar {
		placeholderCount = 0
		for i := 1; strings.Contains(sql, fmt.Sprintf("$%d", i)); i++ {
			placeholderCount++
		}
	}

	if placeholderCount != len(args) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", placeholderCount, len(args))
	}

	return sql, args, nil
}

// Build constructs the final SQL string and arguments. It does not modify the builder.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	next := 1

	switch {
	case b.isSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
		for _, join := range b.joins {
			sb.WriteString(" ")
			sb.WriteString(join)
		}
	case b.isInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES (")
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(b.values)), ", ")
		placeholders, _ = b.format.Replace(placeholders, next)
		sb.WriteString(placeholders)
		sb.WriteString(")")
		if b.suffix != "" {
			sb.WriteString(" ")
			sb.WriteString(b.suffix)
		}
		return sb.String(), append(args, b.values...)
	case b.isUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(b.table)
		sb.WriteString(" SET ")
		setClauses := make([]string, len(b.updateCols))
		for i, col := range b.updateCols {
			setClauses[i], next = b.format.Replace(col+" = ?", next)
		}
		sb.WriteString(strings.Join(setClauses, ", "))
		args = append(args, b.setArgs...)
	case b.isDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if conds, condArgs, _ := b.buildConditions(next); len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(conds)
		args = append(args, condArgs...)
	}

	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}

	if b.limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", b.limit))
	}

	if b.offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET %d", b.offset))
	}

	if b.suffix != "" {
		sb.WriteString(" ")
		sb.WriteString(b.suffix)
	}

	return sb.String(), args
}

// buildConditions renders the WHERE body. Plain Where conditions are joined
// with AND; that block, each group, each Or and each raw condition are then
// joined with OR, in that order.
func (b *SQLBuilder) buildConditions(next int) (string, []interface{}, int) {
	var parts []string
	var args []interface{}

	if len(b.where) > 0 {
		var s string
		s, next = b.format.Replace(strings.Join(b.where, " AND "), next)
		parts = append(parts, s)
		args = append(args, b.whereArgs...)
	}

	for _, g := range b.whereGroups {
		var inner []string
		if len(g.where) > 0 {
			var s string
			s, next = b.format.Replace(strings.Join(g.where, " AND "), next)
			inner = append(inner, s)
			args = append(args, g.whereArgs...)
		}
		for _, c := range append(append([]condition(nil), g.orConditions...), g.rawConditions...) {
			var s string
			s, next = b.format.Replace(c.sql, next)
			inner = append(inner, s)
			args = append(args, c.args...)
		}
		if len(inner) > 0 {
			parts = append(parts, "("+strings.Join(inner, " OR ")+")")
		}
	}

	for _, c := range append(append([]condition(nil), b.orConditions...), b.rawConditions...) {
		var s string
		s, next = b.format.Replace(c.sql, next)
		parts = append(parts, s)
		args = append(args, c.args...)
	}

	return strings.Join(parts, " OR "), args, next
}
