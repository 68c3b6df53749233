// Package sqlkv implements core.Store on top of database/sql using a single
// `state` table keyed by bucket. The sqlite and postgres drivers share it and
// differ only in dialect.
package sqlkv

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"resourcebank/internal/storage/core"
)

// Dialect captures the handful of differences between SQL backends.
type Dialect struct {
	Driver      core.Driver
	PayloadType string // BLOB, BYTEA
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

// QuestionMarks renders `?` placeholders (sqlite).
func QuestionMarks(int) string { return "?" }

// Dollar renders `$n` placeholders (postgres).
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Store persists each key as one row of the state table.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps db and ensures the state table exists.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if dialect.Placeholder == nil {
		dialect.Placeholder = QuestionMarks
	}
	if dialect.PayloadType == "" {
		dialect.PayloadType = "BLOB"
	}
	s := &Store{db: db, dialect: dialect}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload %s NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '',
		updated_at BIGINT NOT NULL DEFAULT 0
	)`, dialect.PayloadType)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Driver() core.Driver { return s.dialect.Driver }

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	if strings.TrimSpace(key) == "" {
		return core.Info{}, fmt.Errorf("empty key")
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return core.Info{}, err
	}
	meta, err := encodeMetadata(opts.Metadata)
	if err != nil {
		return core.Info{}, err
	}
	now := time.Now().UTC()
	p := s.dialect.Placeholder
	query := fmt.Sprintf(`INSERT INTO state(bucket,payload,content_type,metadata,updated_at) VALUES(%s,%s,%s,%s,%s) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload, content_type=EXCLUDED.content_type, metadata=EXCLUDED.metadata, updated_at=EXCLUDED.updated_at`,
		p(1), p(2), p(3), p(4), p(5))
	if _, err := s.db.ExecContext(ctx, query, key, payload, opts.ContentType, meta, now.UnixNano()); err != nil {
		return core.Info{}, fmt.Errorf("upsert %s: %w", key, err)
	}
	return row{key: key, payload: payload, contentType: opts.ContentType, metadata: meta, updatedAt: now.UnixNano()}.info(), nil
}

func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	r, err := s.selectOne(ctx, key)
	if err != nil {
		return core.Info{}, nil, err
	}
	return r.info(), io.NopCloser(bytes.NewReader(r.payload)), nil
}

func (s *Store) Head(ctx context.Context, key string) (core.Info, error) {
	r, err := s.selectOne(ctx, key)
	if err != nil {
		return core.Info{}, err
	}
	return r.info(), nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM state WHERE bucket = %s`, s.dialect.Placeholder(1)), key)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns the keys under prefix without loading their payloads, so the
// returned Info carries no ETag.
func (s *Store) List(ctx context.Context, prefix string) ([]core.Info, error) {
	query := fmt.Sprintf(`SELECT bucket, LENGTH(payload), content_type, metadata, updated_at FROM state WHERE bucket LIKE %s ESCAPE '\' ORDER BY bucket`, s.dialect.Placeholder(1))
	rows, err := s.db.QueryContext(ctx, query, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []core.Info
	for rows.Next() {
		var (
			r    row
			size int64
		)
		if err := rows.Scan(&r.key, &size, &r.contentType, &r.metadata, &r.updatedAt); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		// sqlite LIKE folds ASCII case
		if !strings.HasPrefix(r.key, prefix) {
			continue
		}
		md, _ := decodeMetadata(r.metadata)
		out = append(out, core.Info{
			Key:          r.key,
			Size:         size,
			ContentType:  r.contentType,
			Metadata:     md,
			LastModified: time.Unix(0, r.updatedAt).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state: %w", err)
	}
	return out, nil
}

func (s *Store) selectOne(ctx context.Context, key string) (row, error) {
	query := fmt.Sprintf(`SELECT bucket, payload, content_type, metadata, updated_at FROM state WHERE bucket = %s`, s.dialect.Placeholder(1))
	rows, err := s.db.QueryContext(ctx, query, key)
	if err != nil {
		return row{}, fmt.Errorf("select %s: %w", key, err)
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return row{}, fmt.Errorf("select %s: %w", key, err)
		}
		return row{}, fmt.Errorf("select %s: %w", key, core.ErrNotFound)
	}
	return scanRow(rows)
}

type row struct {
	key         string
	payload     []byte
	contentType string
	metadata    string
	updatedAt   int64
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (row, error) {
	var r row
	if err := sc.Scan(&r.key, &r.payload, &r.contentType, &r.metadata, &r.updatedAt); err != nil {
		return row{}, fmt.Errorf("scan state: %w", err)
	}
	return r, nil
}

func (r row) info() core.Info {
	sum := sha256.Sum256(r.payload)
	md, _ := decodeMetadata(r.metadata)
	return core.Info{
		Key:          r.key,
		Size:         int64(len(r.payload)),
		ContentType:  r.contentType,
		ETag:         hex.EncodeToString(sum[:]),
		Metadata:     md,
		LastModified: time.Unix(0, r.updatedAt).UTC(),
	}
}

func encodeMetadata(md map[string]string) (string, error) {
	if len(md) == 0 {
		return "", nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var md map[string]string
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return md, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string { return likeEscaper.Replace(prefix) + "%" }
