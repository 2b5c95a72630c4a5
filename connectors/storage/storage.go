// SPDX-License-Identifier: quiltery License 1.0

package storage

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	appCfg "github.com/quiltery/lingo/config"
	"github.com/quiltery/lingo/log"
)

func MustConnect(ctx context.Context, ddl, applicationYAMLKey string) *DB {
	var cfg config
	appCfg.MustLoadFromKey(applicationYAMLKey, &cfg)
	if cfg.Storage.PrimaryURL == "" {
		log.Panic(errors.Errorf("primaryURL is required for %q", applicationYAMLKey))
	}
	master := mustConnectPool(ctx, cfg.Storage.PrimaryURL)
	var replicas []*pgxpool.Pool
	if len(cfg.Storage.ReplicaURLs) != 0 {
		replicas = make([]*pgxpool.Pool, 0, len(cfg.Storage.ReplicaURLs))
		for _, url := range cfg.Storage.ReplicaURLs {
			replicas = append(replicas, mustConnectPool(ctx, url))
		}
	}
	if ddl != "" && cfg.Storage.RunDDL {
		for statement := range strings.SplitSeq(ddl, "----") {
			_, err := master.Exec(ctx, statement)
			log.Panic(errors.Wrapf(err, "failed to run statement: %v", statement))
		}
	}

	return &DB{master: master, lb: &lb{replicas: replicas}}
}

func mustConnectPool(ctx context.Context, url string) (db *pgxpool.Pool) {
	poolConfig, err := pgxpool.ParseConfig(url)
	log.Panic(errors.Wrapf(err, "failed to parse pool config: %v", url)) //nolint:revive // Intended.
	poolConfig.AfterConnect = func(cctx context.Context, conn *pgx.Conn) error {
		var res int
		if qErr := conn.QueryRow(cctx, `SELECT 1`).Scan(&res); qErr != nil {
			return errors.Wrapf(qErr, "dummy select failed")
		}
		if res != 1 {
			return errors.New("db validation failed")
		}

		return nil
	}
	db, err = pgxpool.NewWithConfig(ctx, poolConfig)
	log.Panic(errors.Wrapf(err, "failed to start pool for config: %v", url))

	return db
}

func (db *DB) Close() error {
	if db.master != nil {
		db.master.Close()
	}
	for _, replica := range db.lb.replicas {
		replica.Close()
	}

	return nil
}

func (db *DB) primary() *pgxpool.Pool {
	return db.master
}

func (db *DB) replica() *pgxpool.Pool {
	if len(db.lb.replicas) == 0 {
		return db.master
	}

	return db.lb.replicas[atomic.AddUint64(&db.lb.currentIndex, 1)%uint64(len(db.lb.replicas))]
}

func (*DB) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	panic("should not be used because its implemented just for type matching")
}

func (*DB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	panic("should not be used because its implemented just for type matching")
}

func (db *DB) Primary() *pgxpool.Pool {
	return db.primary()
}

func (db *DB) Replica() *pgxpool.Pool {
	return db.replica()
}
