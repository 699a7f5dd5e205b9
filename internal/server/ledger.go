// ledger.go - Optional PostgreSQL record of stored uploads.
package server

import (
	"context"
	"database/sql"
	"time"
)

// UploadRecord is one row of the uploads ledger.
type UploadRecord struct {
	ID          int64     `json:"id"`
	FileID      string    `json:"file_id"`
	StoredName  string    `json:"stored_name"`
	ContentType string    `json:"content_type"`
	FileName    string    `json:"file_name,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	RequestID   string    `json:"request_id,omitempty"`
	RemoteIP    string    `json:"remote_ip,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ledger records successful uploads. It is never consulted when serving files.
type Ledger interface {
	Record(ctx context.Context, rec UploadRecord) error
	Recent(ctx context.Context, limit int) ([]UploadRecord, error)
	History(ctx context.Context, fileID string, limit int) ([]UploadRecord, error)
}

// PGLedger stores UploadRecords in the uploads table.
type PGLedger struct {
	db *sql.DB
}

func NewPGLedger(db *sql.DB) *PGLedger {
	return &PGLedger{db: db}
}

func (l *PGLedger) Record(ctx context.Context, rec UploadRecord) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO uploads (
			file_id, stored_name, content_type, file_name,
			size_bytes, request_id, remote_ip
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		rec.FileID,
		rec.StoredName,
		rec.ContentType,
		nullString(rec.FileName),
		rec.SizeBytes,
		nullString(rec.RequestID),
		nullString(rec.RemoteIP),
	)
	return err
}

func (l *PGLedger) Recent(ctx context.Context, limit int) ([]UploadRecord, error) {
	return l.query(ctx, `
		SELECT id, file_id, stored_name, content_type, file_name,
		       size_bytes, request_id, remote_ip, created_at
		FROM uploads
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
}

func (l *PGLedger) History(ctx context.Context, fileID string, limit int) ([]UploadRecord, error) {
	return l.query(ctx, `
		SELECT id, file_id, stored_name, content_type, file_name,
		       size_bytes, request_id, remote_ip, created_at
		FROM uploads
		WHERE file_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, fileID, limit)
}

func (l *PGLedger) query(ctx context.Context, query string, args ...any) ([]UploadRecord, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []UploadRecord{}
	for rows.Next() {
		var (
			rec                           UploadRecord
			fileName, requestID, remoteIP sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.FileID,
			&rec.StoredName,
			&rec.ContentType,
			&fileName,
			&rec.SizeBytes,
			&requestID,
			&remoteIP,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.FileName = fileName.String
		rec.RequestID = requestID.String
		rec.RemoteIP = remoteIP.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// nullString helper for nullable strings
func nullString(s string) sql.NullString {
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}
