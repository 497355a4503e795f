package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fredrikhr/restview/internal/errdef"
)

// SQLiteProvider keeps blobs in a single-file database. Useful when a
// session should leave one artifact behind instead of a directory of
// loose payload files.
type SQLiteProvider struct {
	db *sql.DB
}

func NewSQLiteProvider(path string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeStorage, err, "open blob db %q", path)
	}
	_, err = db.Exec(
		`CREATE TABLE IF NOT EXISTS blobs (
			uri TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	)
	if err != nil {
		_ = db.Close()
		return nil, errdef.Wrap(errdef.CodeStorage, err, "init blob db %q", path)
	}
	return &SQLiteProvider{db: db}, nil
}

func (p *SQLiteProvider) Write(ctx context.Context, name string, data []byte) (string, error) {
	uri := "sqlite://" + uuid.NewString()
	_, err := p.db.ExecContext(
		ctx,
		`INSERT INTO blobs (uri, name, data, created_at) VALUES (?, ?, ?, strftime('%s','now'))`,
		uri, name, data,
	)
	if err != nil {
		return "", errdef.Wrap(errdef.CodeStorage, err, "write blob %q", name)
	}
	return uri, nil
}

func (p *SQLiteProvider) Read(ctx context.Context, uri string) ([]byte, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE uri = ?`, uri).Scan(&data)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeStorage, err, "read blob %q", uri)
	}
	return data, nil
}

func (p *SQLiteProvider) Delete(ctx context.Context, uri string) {
	_, _ = p.db.ExecContext(ctx, `DELETE FROM blobs WHERE uri = ?`, uri)
}

func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}
