// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/edgewatch/internal/config"
	"github.com/tomtom215/edgewatch/internal/logging"
	"github.com/tomtom215/edgewatch/internal/metrics"
	"github.com/tomtom215/edgewatch/internal/models"
	"github.com/tomtom215/edgewatch/internal/topology"
)

// DuckDBRepository reads samples from a DuckDB replica file. Bandwidth is
// stored in long format, one row per (timestamp, series). Cache rows keep
// an insertion sequence so query selections come back in ranking order.
type DuckDBRepository struct {
	conn         *sql.DB
	queryTimeout time.Duration
}

var _ SampleRepository = (*DuckDBRepository)(nil)

var duckdbSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS cache_samples_seq`,
	`CREATE TABLE IF NOT EXISTS bandwidth (
		timestamp TIMESTAMP NOT NULL,
		series    VARCHAR   NOT NULL,
		gbps      DOUBLE    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bandwidth_ts ON bandwidth (timestamp)`,
	`CREATE TABLE IF NOT EXISTS cache_samples (
		seq       BIGINT    NOT NULL DEFAULT nextval('cache_samples_seq'),
		timestamp TIMESTAMP NOT NULL,
		host      VARCHAR,
		city      VARCHAR,
		region    VARCHAR,
		load      DOUBLE,
		type      VARCHAR,
		query_id  INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cache_samples_ts ON cache_samples (timestamp)`,
}

// OpenDuckDB opens the replica at cfg.DuckDBPath. The file is opened read
// only unless cfg.DuckDBCreateIfAbsent is set, in which case the schema is
// created as well. ":memory:" opens a private in-memory database.
func OpenDuckDB(ctx context.Context, cfg *config.StoreConfig) (*DuckDBRepository, error) {
	threads := cfg.DuckDBThreads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	mode := "read_only"
	if cfg.DuckDBCreateIfAbsent || cfg.DuckDBPath == ":memory:" {
		mode = "read_write"
	}

	connStr := fmt.Sprintf("%s?access_mode=%s&threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.DuckDBPath, mode, threads)
	if cfg.DuckDBPath == ":memory:" {
		connStr = fmt.Sprintf(":memory:?threads=%d", threads)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	r := &DuckDBRepository{conn: conn, queryTimeout: cfg.QueryTimeout}
	if mode == "read_write" {
		if err := r.EnsureSchema(ctx); err != nil {
			closeQuietly(conn)
			return nil, err
		}
	}
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, unavailable("open duckdb", err)
	}

	logging.Info().Str("path", cfg.DuckDBPath).Str("mode", mode).Int("threads", threads).Msg("Opened DuckDB replica")
	return r, nil
}

// EnsureSchema creates the replica tables when they do not exist.
func (r *DuckDBRepository) EnsureSchema(ctx context.Context) error {
	for _, query := range duckdbSchema {
		if _, err := r.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create duckdb schema: %w", err)
		}
	}
	return nil
}

func (r *DuckDBRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

// BandwidthSamples implements SampleRepository.
func (r *DuckDBRepository) BandwidthSamples(ctx context.Context, w Window) ([]models.BandwidthSample, error) {
	return r.queryBandwidth(ctx, "bandwidth_window", `
		SELECT timestamp, series, gbps FROM bandwidth
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp`, w.Start, w.End)
}

// LatestBandwidth implements SampleRepository.
func (r *DuckDBRepository) LatestBandwidth(ctx context.Context, limit int) ([]models.BandwidthSample, error) {
	return r.queryBandwidth(ctx, "bandwidth_latest", `
		SELECT b.timestamp, b.series, b.gbps FROM bandwidth b
		JOIN (SELECT DISTINCT timestamp FROM bandwidth ORDER BY timestamp DESC LIMIT ?) latest
		  ON b.timestamp = latest.timestamp
		ORDER BY b.timestamp DESC`, limit)
}

// queryBandwidth folds long-format rows back into one sample per
// timestamp, keeping the order timestamps first appear in the result.
func (r *DuckDBRepository) queryBandwidth(ctx context.Context, op, query string, args ...any) (samples []models.BandwidthSample, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, "bandwidth", time.Since(start), err) }()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer closeQuietly(rows)

	samples = make([]models.BandwidthSample, 0)
	index := make(map[time.Time]int)
	for rows.Next() {
		var (
			ts     time.Time
			series string
			gbps   float64
		)
		if err := rows.Scan(&ts, &series, &gbps); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		ts = ts.UTC()
		i, ok := index[ts]
		if !ok {
			i = len(samples)
			index[ts] = i
			samples = append(samples, models.BandwidthSample{Timestamp: ts, Series: make(map[string]float64)})
		}
		samples[i].Series[topology.CanonicalRegion(series)] = gbps
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return samples, nil
}

// BandwidthBounds implements SampleRepository.
func (r *DuckDBRepository) BandwidthBounds(ctx context.Context) (b Bounds, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("bandwidth_bounds", "bandwidth", time.Since(start), err) }()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var first, last sql.NullTime
	if err := r.conn.QueryRowContext(ctx, `SELECT MIN(timestamp), MAX(timestamp) FROM bandwidth`).Scan(&first, &last); err != nil {
		return Bounds{}, unavailable("bandwidth_bounds", err)
	}
	if first.Valid {
		b.First = first.Time.UTC()
	}
	if last.Valid {
		b.Last = last.Time.UTC()
	}
	return b, nil
}

// LoadSamples implements SampleRepository.
func (r *DuckDBRepository) LoadSamples(ctx context.Context, w Window, f LoadFilter) (samples []models.LoadSample, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("load_samples", "cache_samples", time.Since(start), err) }()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	whereClauses := []string{"timestamp >= ?", "timestamp <= ?", "load IS NOT NULL"}
	args := []any{w.Start, w.End}
	if f.Region != "" {
		whereClauses = append(whereClauses, "replace(region, ' ', '_') = ?")
		args = append(args, topology.CanonicalRegion(f.Region))
	}
	if f.City != "" {
		whereClauses = append(whereClauses, "city = ?")
		args = append(args, f.City)
	}
	if f.Host != "" {
		whereClauses = append(whereClauses, "host = ?")
		args = append(args, f.Host)
	}
	if f.SampleType != "" {
		whereClauses = append(whereClauses, "type = ?")
		args = append(args, f.SampleType)
	}

	query := `
		SELECT timestamp, COALESCE(host, ''), COALESCE(city, ''), COALESCE(region, ''), load, COALESCE(type, '')
		FROM cache_samples
		WHERE ` + strings.Join(whereClauses, " AND ") + `
		ORDER BY seq`

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("load_samples", err)
	}
	defer closeQuietly(rows)

	samples = make([]models.LoadSample, 0)
	for rows.Next() {
		var s models.LoadSample
		if err := rows.Scan(&s.Timestamp, &s.Host, &s.City, &s.Region, &s.Load, &s.SampleType); err != nil {
			return nil, fmt.Errorf("load_samples: scan: %w", err)
		}
		s.Timestamp = s.Timestamp.UTC()
		s.Region = topology.CanonicalRegion(s.Region)
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("load_samples", err)
	}
	return samples, nil
}

// QuerySelectionSamples implements SampleRepository.
func (r *DuckDBRepository) QuerySelectionSamples(ctx context.Context, w Window) (samples []models.QuerySelectionSample, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("query_selections", "cache_samples", time.Since(start), err) }()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.conn.QueryContext(ctx, `
		SELECT timestamp, query_id, COALESCE(city, '')
		FROM cache_samples
		WHERE timestamp >= ? AND timestamp <= ? AND query_id IS NOT NULL
		ORDER BY seq`, w.Start, w.End)
	if err != nil {
		return nil, unavailable("query_selections", err)
	}
	defer closeQuietly(rows)

	samples = make([]models.QuerySelectionSample, 0)
	for rows.Next() {
		var s models.QuerySelectionSample
		if err := rows.Scan(&s.Timestamp, &s.QueryID, &s.City); err != nil {
			return nil, fmt.Errorf("query_selections: scan: %w", err)
		}
		s.Timestamp = s.Timestamp.UTC()
		s.OriginCellID = s.QueryID
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query_selections", err)
	}
	return samples, nil
}

// AppendBandwidth writes bandwidth samples to the replica in one
// transaction. Series are written in name order.
func (r *DuckDBRepository) AppendBandwidth(ctx context.Context, samples []models.BandwidthSample) error {
	return r.inTx(ctx, `INSERT INTO bandwidth (timestamp, series, gbps) VALUES (?, ?, ?)`, func(stmt *sql.Stmt) error {
		for _, s := range samples {
			names := make([]string, 0, len(s.Series))
			for name := range s.Series {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if _, err := stmt.ExecContext(ctx, s.Timestamp.UTC(), name, s.Series[name]); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// AppendLoadSamples writes load readings to the replica.
func (r *DuckDBRepository) AppendLoadSamples(ctx context.Context, samples []models.LoadSample) error {
	return r.inTx(ctx, `INSERT INTO cache_samples (timestamp, host, city, region, load, type) VALUES (?, ?, ?, ?, ?, ?)`, func(stmt *sql.Stmt) error {
		for _, s := range samples {
			if _, err := stmt.ExecContext(ctx, s.Timestamp.UTC(), s.Host, s.City, s.Region, s.Load, s.SampleType); err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendQuerySelections writes selection rows in the given order, which
// becomes their ranking order on read.
func (r *DuckDBRepository) AppendQuerySelections(ctx context.Context, samples []models.QuerySelectionSample) error {
	return r.inTx(ctx, `INSERT INTO cache_samples (timestamp, city, query_id) VALUES (?, ?, ?)`, func(stmt *sql.Stmt) error {
		for _, s := range samples {
			if _, err := stmt.ExecContext(ctx, s.Timestamp.UTC(), s.City, s.QueryID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DuckDBRepository) inTx(ctx context.Context, query string, fn func(*sql.Stmt) error) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer closeQuietly(stmt)

	if err := fn(stmt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Ping implements SampleRepository.
func (r *DuckDBRepository) Ping(ctx context.Context) error {
	return unavailable("ping", r.conn.PingContext(ctx))
}

// Close implements SampleRepository.
func (r *DuckDBRepository) Close() error {
	return r.conn.Close()
}
