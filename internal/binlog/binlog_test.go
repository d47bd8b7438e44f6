package binlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	gomysql "github.com/go-mysql-org/go-mysql/mysql"
	"github.com/go-mysql-org/go-mysql/replication"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willfong/fund-playground/internal/config"
)

const testGTID = "3e11fa47-71ca-11e1-9e33-c80aa9429562:1-5"

func rowsEvent(schema, table string, rows ...[]any) *replication.RowsEvent {
	return &replication.RowsEvent{
		Table: &replication.TableMapEvent{Schema: []byte(schema), Table: []byte(table)},
		Rows:  rows,
	}
}

func binlogEvent(t replication.EventType, e replication.Event) *replication.BinlogEvent {
	return &replication.BinlogEvent{Header: &replication.EventHeader{EventType: t}, Event: e}
}

func testWatcher(t *testing.T) *Watcher {
	t.Helper()
	cfg := config.DefaultConfig().Replication
	cfg.CheckpointFile = filepath.Join(t.TempDir(), "last_gtid.txt")
	return New(cfg, zerolog.Nop())
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		eventType replication.EventType
		want      Action
		ok        bool
	}{
		{replication.WRITE_ROWS_EVENTv1, ActionInsert, true},
		{replication.WRITE_ROWS_EVENTv2, ActionInsert, true},
		{replication.UPDATE_ROWS_EVENTv2, ActionUpdate, true},
		{replication.DELETE_ROWS_EVENTv1, ActionDelete, true},
		{replication.QUERY_EVENT, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.eventType.String(), func(t *testing.T) {
			got, ok := ActionFor(tt.eventType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewChangeEvent(t *testing.T) {
	t.Run("update rows are paired", func(t *testing.T) {
		e := rowsEvent("fund_playground_db", "accounts",
			[]any{int64(1), "Alice", "969.25"}, []any{int64(1), "Alice", "1000.00"},
			[]any{int64(2), "Bob", "1.00"}, []any{int64(2), "Bob", "2.00"},
		)

		ce, ok := NewChangeEvent(replication.UPDATE_ROWS_EVENTv2, e)
		require.True(t, ok)
		assert.Equal(t, "fund_playground_db", ce.Schema)
		assert.Equal(t, "accounts", ce.Table)
		assert.Equal(t, ActionUpdate, ce.Action)
		require.Len(t, ce.Rows, 2)
		assert.Equal(t, "969.25", ce.Rows[0].Before[2])
		assert.Equal(t, "1000.00", ce.Rows[0].After[2])
		assert.Equal(t, int64(2), ce.Rows[1].Before[0])
	})

	t.Run("unpaired update image is dropped", func(t *testing.T) {
		e := rowsEvent("db", "accounts", []any{1}, []any{2}, []any{3})
		ce, ok := NewChangeEvent(replication.UPDATE_ROWS_EVENTv1, e)
		require.True(t, ok)
		assert.Len(t, ce.Rows, 1)
	})

	t.Run("insert and delete", func(t *testing.T) {
		ins, ok := NewChangeEvent(replication.WRITE_ROWS_EVENTv2, rowsEvent("db", "transactions", []any{1}, []any{2}))
		require.True(t, ok)
		require.Len(t, ins.Rows, 2)
		assert.Nil(t, ins.Rows[0].Before)
		assert.Equal(t, []any{2}, ins.Rows[1].After)

		del, ok := NewChangeEvent(replication.DELETE_ROWS_EVENTv2, rowsEvent("db", "transactions", []any{9}))
		require.True(t, ok)
		assert.Equal(t, []any{9}, del.Rows[0].Before)
		assert.Nil(t, del.Rows[0].After)
	})

	t.Run("non rows event type", func(t *testing.T) {
		_, ok := NewChangeEvent(replication.XID_EVENT, rowsEvent("db", "accounts"))
		assert.False(t, ok)
	})
}

func TestTableFilter(t *testing.T) {
	f := NewTableFilter([]string{"accounts", " Fund_Playground_DB.Transactions "})

	assert.True(t, f.Match("any_db", "accounts"))
	assert.True(t, f.Match("fund_playground_db", "transactions"))
	assert.False(t, f.Match("other_db", "transactions"))
	assert.False(t, f.Match("fund_playground_db", "audit"))

	assert.True(t, NewTableFilter(nil).Match("x", "y"))
}

func TestCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_gtid.txt")
	cp := NewCheckpoint(path)

	_, ok, err := cp.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cp.Save(testGTID))
	got, ok, err := cp.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testGTID, got)

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))
	_, ok, err = cp.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStartPosition(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to server position", func(t *testing.T) {
		w := testWatcher(t)
		w.currentGTID = func(context.Context) (string, error) { return testGTID, nil }

		gset, err := w.StartPosition(ctx)
		require.NoError(t, err)
		want, err := gomysql.ParseGTIDSet(gomysql.MySQLFlavor, testGTID)
		require.NoError(t, err)
		assert.True(t, gset.Equal(want))
	})

	t.Run("prefers checkpoint", func(t *testing.T) {
		w := testWatcher(t)
		require.NoError(t, w.Checkpoint().Save(testGTID))
		w.currentGTID = func(context.Context) (string, error) {
			return "", errors.New("should not be called")
		}

		gset, err := w.StartPosition(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, gset.String())
	})

	t.Run("server error", func(t *testing.T) {
		w := testWatcher(t)
		w.currentGTID = func(context.Context) (string, error) { return "", errors.New("access denied") }

		_, err := w.StartPosition(ctx)
		assert.Error(t, err)
	})

	t.Run("bad checkpoint", func(t *testing.T) {
		w := testWatcher(t)
		require.NoError(t, w.Checkpoint().Save("not-a-gtid"))

		_, err := w.StartPosition(ctx)
		assert.Error(t, err)
	})
}

func TestHandle(t *testing.T) {
	t.Run("rows events pass the filter", func(t *testing.T) {
		w := testWatcher(t)
		var got []*ChangeEvent
		w.OnChange = func(ce *ChangeEvent) { got = append(got, ce) }

		require.NoError(t, w.handle(binlogEvent(replication.WRITE_ROWS_EVENTv2,
			rowsEvent("fund_playground_db", "transactions", []any{1}))))
		require.NoError(t, w.handle(binlogEvent(replication.WRITE_ROWS_EVENTv2,
			rowsEvent("fund_playground_db", "audit_log", []any{1}))))

		require.Len(t, got, 1)
		assert.Equal(t, "transactions", got[0].Table)
	})

	t.Run("xid saves checkpoint", func(t *testing.T) {
		w := testWatcher(t)
		gset, err := gomysql.ParseGTIDSet(gomysql.MySQLFlavor, testGTID)
		require.NoError(t, err)

		require.NoError(t, w.handle(binlogEvent(replication.XID_EVENT, &replication.XIDEvent{XID: 7, GSet: gset})))

		saved, ok, err := w.Checkpoint().Load()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, gset.String(), saved)
	})

	t.Run("xid without gtid set", func(t *testing.T) {
		w := testWatcher(t)
		require.NoError(t, w.handle(binlogEvent(replication.XID_EVENT, &replication.XIDEvent{XID: 8})))

		_, ok, err := w.Checkpoint().Load()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
