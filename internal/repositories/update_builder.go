package repositories

import (
	"errors"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
)

var (
	ErrUnknownTable     = errors.New("unknown table")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrMissingCondition = errors.New("update without condition")
	ErrNothingToUpdate  = errors.New("nothing to update")
)

// Fields maps column names to values.
type Fields map[string]interface{}

// TableSchema lists what an update may touch. Keys may appear in the WHERE
// clause, Columns may be assigned, Touch is set to NOW() on every update.
type TableSchema struct {
	Keys    []string
	Columns []string
	Touch   string
}

type UpdateQuery struct {
	SQL  string
	Args []interface{}
}

// UpdateBuilder renders parameterized UPDATE statements for whitelisted
// tables and columns only.
type UpdateBuilder struct {
	tables map[string]tableColumns
}

type tableColumns struct {
	keys    map[string]struct{}
	columns map[string]struct{}
	touch   string
}

func NewUpdateBuilder(schema map[string]TableSchema) *UpdateBuilder {
	tables := make(map[string]tableColumns, len(schema))
	for name, s := range schema {
		tc := tableColumns{
			keys:    make(map[string]struct{}, len(s.Keys)),
			columns: make(map[string]struct{}, len(s.Columns)),
			touch:   s.Touch,
		}
		for _, k := range s.Keys {
			tc.keys[k] = struct{}{}
		}
		for _, c := range s.Columns {
			tc.columns[c] = struct{}{}
		}
		tables[name] = tc
	}
	return &UpdateBuilder{tables: tables}
}

// Build returns "UPDATE table SET c1 = $1, ... WHERE k1 = $n ...". Arguments
// are the values followed by the condition values, each group in ascending
// column order.
func (b *UpdateBuilder) Build(table string, condition, values Fields) (*UpdateQuery, error) {
	tc, ok := b.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	if len(condition) == 0 {
		return nil, ErrMissingCondition
	}
	if len(values) == 0 {
		return nil, ErrNothingToUpdate
	}

	for _, col := range sortedKeys(values) {
		if !b.Allows(table, col) {
			return nil, fmt.Errorf("%w: %q is not updatable in %s", ErrUnknownColumn, col, table)
		}
	}
	for _, col := range sortedKeys(condition) {
		if _, isKey := tc.keys[col]; !isKey && !b.Allows(table, col) {
			return nil, fmt.Errorf("%w: %q cannot filter %s", ErrUnknownColumn, col, table)
		}
	}

	qb := sq.Update(table).
		PlaceholderFormat(sq.Dollar).
		SetMap(map[string]interface{}(values))
	if tc.touch != "" {
		qb = qb.Set(tc.touch, sq.Expr("NOW()"))
	}
	qb = qb.Where(sq.Eq(condition))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query for %s: %w", table, err)
	}
	return &UpdateQuery{SQL: query, Args: args}, nil
}

// Allows reports whether column is updatable in table.
func (b *UpdateBuilder) Allows(table, column string) bool {
	tc, ok := b.tables[table]
	if !ok {
		return false
	}
	_, ok = tc.columns[column]
	return ok
}

func sortedKeys(f Fields) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const usersTable = "users"

// ProfileColumns are the users columns a profile update may change.
var ProfileColumns = []string{
	"first_name", "last_name", "email", "gender", "blood_group",
	"mobile_number", "emergency_contact_number", "emergency_contact_person_info",
	"address", "dob", "designation", "designation_type", "joining_date",
	"experience", "completed_projects", "performance", "teams", "client_report",
}

func DefaultUpdateSchema() map[string]TableSchema {
	return map[string]TableSchema{
		usersTable: {
			Keys:    []string{"emp_id"},
			Columns: ProfileColumns,
			Touch:   "updated_at",
		},
	}
}
