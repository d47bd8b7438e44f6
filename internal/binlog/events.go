package binlog

import (
	"strings"

	"github.com/go-mysql-org/go-mysql/replication"
)

// Action is the kind of row change
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// RowChange holds one row image pair. Before is nil for inserts and After
// is nil for deletes.
type RowChange struct {
	Before []any
	After  []any
}

// ChangeEvent is a decoded rows event for a single table
type ChangeEvent struct {
	Schema string
	Table  string
	Action Action
	Rows   []RowChange
}

// ActionFor maps a binlog event type to a row action. Both v1 and v2 row
// event codes are accepted.
func ActionFor(t replication.EventType) (Action, bool) {
	switch t {
	case replication.WRITE_ROWS_EVENTv1, replication.WRITE_ROWS_EVENTv2:
		return ActionInsert, true
	case replication.UPDATE_ROWS_EVENTv1, replication.UPDATE_ROWS_EVENTv2:
		return ActionUpdate, true
	case replication.DELETE_ROWS_EVENTv1, replication.DELETE_ROWS_EVENTv2:
		return ActionDelete, true
	}
	return "", false
}

// NewChangeEvent decodes a rows event. UPDATE rows arrive as consecutive
// before/after images and are paired; a trailing unpaired image is dropped.
func NewChangeEvent(t replication.EventType, e *replication.RowsEvent) (*ChangeEvent, bool) {
	action, ok := ActionFor(t)
	if !ok || e == nil || e.Table == nil {
		return nil, false
	}

	ce := &ChangeEvent{
		Schema: string(e.Table.Schema),
		Table:  string(e.Table.Table),
		Action: action,
	}

	switch action {
	case ActionUpdate:
		for i := 0; i+1 < len(e.Rows); i += 2 {
			ce.Rows = append(ce.Rows, RowChange{Before: e.Rows[i], After: e.Rows[i+1]})
		}
	case ActionInsert:
		for _, row := range e.Rows {
			ce.Rows = append(ce.Rows, RowChange{After: row})
		}
	case ActionDelete:
		for _, row := range e.Rows {
			ce.Rows = append(ce.Rows, RowChange{Before: row})
		}
	}
	return ce, true
}

// TableFilter selects which tables are reported. Entries are either a bare
// table name or schema.table. An empty filter matches everything.
type TableFilter struct {
	tables map[string]bool
}

// NewTableFilter builds a filter from table names, case-insensitively
func NewTableFilter(tables []string) TableFilter {
	f := TableFilter{tables: make(map[string]bool, len(tables))}
	for _, t := range tables {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			f.tables[t] = true
		}
	}
	return f
}

// Match reports whether schema.table passes the filter
func (f TableFilter) Match(schema, table string) bool {
	if len(f.tables) == 0 {
		return true
	}
	table = strings.ToLower(table)
	return f.tables[table] || f.tables[strings.ToLower(schema)+"."+table]
}
