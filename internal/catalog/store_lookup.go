package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fileset/internal/faults"
)

// ErrNotFound reports a record id with no row.
var ErrNotFound = errors.New("record not found")

// LookupByFingerprint classifies how many records carry fp.
func (s *Store) LookupByFingerprint(ctx context.Context, fp Fingerprint) (Match, error) {
	var (
		count int
		minID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), MIN(id) FROM files WHERE size = ? AND crc = ?`,
		fp.Size, int64(fp.CRC32),
	).Scan(&count, &minID)
	if err != nil {
		return Match{}, faults.Wrap(faults.ErrIndex, "catalog", "lookup", "", err)
	}
	switch {
	case count == 0:
		return Match{Outcome: OutcomeNone}, nil
	case count == 1:
		return Match{Outcome: OutcomeOne, ID: minID.Int64, Count: 1}, nil
	default:
		return Match{Outcome: OutcomeAmbiguous, Count: count}, nil
	}
}

// MarkFound flags a record as present on disk.
func (s *Store) MarkFound(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE files SET found = 1 WHERE id = ?`, id)
	if err != nil {
		return faults.Wrap(faults.ErrIndex, "catalog", "mark found", fmt.Sprintf("file %d", id), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return faults.Wrap(faults.ErrIndex, "catalog", "mark found", fmt.Sprintf("file %d", id), ErrNotFound)
	}
	return nil
}

// ResetFound clears the found flag on every record.
func (s *Store) ResetFound(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE files SET found = 0 WHERE found <> 0`); err != nil {
		return faults.Wrap(faults.ErrIndex, "catalog", "reset found", "", err)
	}
	return nil
}

// GetFile fetches one record by id.
func (s *Store) GetFile(ctx context.Context, id int64) (*FileRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE id = ?", id)
	rec, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "get file", fmt.Sprintf("file %d", id), ErrNotFound)
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "get file", fmt.Sprintf("file %d", id), err)
	}
	return rec, nil
}

// Placement resolves the collection and set a record belongs to.
func (s *Store) Placement(ctx context.Context, fileID int64) (Placement, error) {
	var (
		p       Placement
		setName sql.NullString
		name    sql.NullString
		root    sql.NullString
		found   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT f.id, c.name, c.root, s.name, f.name, f.found
         FROM files f
         LEFT JOIN sets s ON s.id = f.set_id
         LEFT JOIN collections c ON c.id = s.collection_id
         WHERE f.id = ?`,
		fileID,
	).Scan(&p.FileID, &name, &root, &setName, &p.File, &found)
	if errors.Is(err, sql.ErrNoRows) {
		return Placement{}, faults.Wrap(faults.ErrIndex, "catalog", "placement", fmt.Sprintf("file %d", fileID), ErrNotFound)
	}
	if err != nil {
		return Placement{}, faults.Wrap(faults.ErrIndex, "catalog", "placement", fmt.Sprintf("file %d", fileID), err)
	}
	p.Collection = name.String
	p.Root = root.String
	p.Set = setName.String
	p.Found = found != 0
	return p, nil
}
