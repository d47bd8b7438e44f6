// Package binlog streams row changes from the MySQL binary log.
//
// The watcher connects as a replica, resumes from a GTID set saved in a
// checkpoint file (or the server's executed set on first run), decodes rows
// events for the selected tables and saves the checkpoint after every
// committed transaction.
package binlog

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/go-mysql-org/go-mysql/client"
	gomysql "github.com/go-mysql-org/go-mysql/mysql"
	"github.com/go-mysql-org/go-mysql/replication"
	"github.com/rs/zerolog"
	"github.com/willfong/fund-playground/internal/config"
)

// Watcher follows the binlog and reports row changes
type Watcher struct {
	cfg        config.ReplicationConfig
	checkpoint *Checkpoint
	filter     TableFilter
	log        zerolog.Logger

	// currentGTID reads the server's executed GTID set
	currentGTID func(ctx context.Context) (string, error)

	// OnChange is called for every rows event that passes the table filter
	OnChange func(*ChangeEvent)
}

// New creates a watcher for cfg
func New(cfg config.ReplicationConfig, log zerolog.Logger) *Watcher {
	w := &Watcher{
		cfg:        cfg,
		checkpoint: NewCheckpoint(cfg.CheckpointFile),
		filter:     NewTableFilter(cfg.Tables),
		log:        log,
	}
	w.currentGTID = w.queryExecutedGTID
	return w
}

// Checkpoint returns the watcher's checkpoint store
func (w *Watcher) Checkpoint() *Checkpoint {
	return w.checkpoint
}

// StartPosition returns the GTID set to resume from: the checkpoint if one
// was saved, otherwise the server's @@global.gtid_executed
func (w *Watcher) StartPosition(ctx context.Context) (gomysql.GTIDSet, error) {
	saved, ok, err := w.checkpoint.Load()
	if err != nil {
		return nil, err
	}

	if !ok {
		w.log.Info().Str("checkpoint", w.checkpoint.Path()).Msg("no saved GTID, starting from current server position")
		saved, err = w.currentGTID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read executed GTID set: %w", err)
		}
	}

	gset, err := gomysql.ParseGTIDSet(w.cfg.Flavor, saved)
	if err != nil {
		return nil, fmt.Errorf("invalid GTID set %q: %w", saved, err)
	}
	return gset, nil
}

// Run streams events until ctx is cancelled. Cancellation is a clean stop
// and returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.cfg.Validate(); err != nil {
		return err
	}

	gset, err := w.StartPosition(ctx)
	if err != nil {
		return err
	}

	syncer := replication.NewBinlogSyncer(replication.BinlogSyncerConfig{
		ServerID: w.cfg.ServerID,
		Flavor:   w.cfg.Flavor,
		Host:     w.cfg.Host,
		Port:     uint16(w.cfg.Port),
		User:     w.cfg.User,
		Password: w.cfg.Password,
	})
	defer syncer.Close()

	streamer, err := syncer.StartSyncGTID(gset)
	if err != nil {
		return fmt.Errorf("failed to start GTID sync: %w", err)
	}
	w.log.Info().Str("gtid", gset.String()).Msg("binlog streamer started")

	for {
		ev, err := streamer.GetEvent(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				w.log.Info().Msg("binlog watcher stopped")
				return nil
			}
			return fmt.Errorf("failed to read binlog event: %w", err)
		}

		if err := w.handle(ev); err != nil {
			return err
		}
	}
}

// handle dispatches one binlog event
func (w *Watcher) handle(ev *replication.BinlogEvent) error {
	switch e := ev.Event.(type) {
	case *replication.RowsEvent:
		ce, ok := NewChangeEvent(ev.Header.EventType, e)
		if !ok || !w.filter.Match(ce.Schema, ce.Table) {
			return nil
		}
		w.log.Debug().
			Str("schema", ce.Schema).
			Str("table", ce.Table).
			Str("action", string(ce.Action)).
			Int("rows", len(ce.Rows)).
			Msg("rows event")
		if w.OnChange != nil {
			w.OnChange(ce)
		}

	case *replication.XIDEvent:
		if e.GSet == nil {
			return nil
		}
		if err := w.checkpoint.Save(e.GSet.String()); err != nil {
			return err
		}
		w.log.Debug().Str("gtid", e.GSet.String()).Msg("checkpoint saved")

	case *replication.RotateEvent:
		w.log.Info().
			Str("file", string(e.NextLogName)).
			Uint64("position", e.Position).
			Msg("rotated to new binlog file")

	case *replication.QueryEvent:
		w.log.Debug().
			Str("schema", string(e.Schema)).
			Str("query", string(e.Query)).
			Msg("query event")
	}
	return nil
}

// queryExecutedGTID asks the server for @@global.gtid_executed using the
// replication credentials
func (w *Watcher) queryExecutedGTID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addr := net.JoinHostPort(w.cfg.Host, strconv.Itoa(w.cfg.Port))
	conn, err := client.Connect(addr, w.cfg.User, w.cfg.Password, "")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	result, err := conn.Execute("SELECT @@global.gtid_executed")
	if err != nil {
		return "", err
	}
	return result.GetString(0, 0)
}
