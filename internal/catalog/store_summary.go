package catalog

import (
	"context"

	"fileset/internal/faults"
)

// ListCollections returns every collection ordered by name.
func (s *Store) ListCollections(ctx context.Context) ([]Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, root, description, version, comment, header
         FROM collections ORDER BY name, id`)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "list collections", "", err)
	}
	defer rows.Close()

	var out []Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, faults.Wrap(faults.ErrIndex, "catalog", "list collections", "scan", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "list collections", "", err)
	}
	return out, nil
}

// Summarize aggregates set, file, and found counts per collection.
func (s *Store) Summarize(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.root,
                (SELECT COUNT(1) FROM sets WHERE collection_id = c.id),
                COUNT(f.id),
                COALESCE(SUM(f.found), 0),
                COALESCE(SUM(f.size), 0)
         FROM collections c
         LEFT JOIN sets s ON s.collection_id = c.id
         LEFT JOIN files f ON f.set_id = s.id
         GROUP BY c.id, c.name, c.root
         ORDER BY c.name, c.id`)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "summarize", "", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.CollectionID, &sum.Name, &sum.Root, &sum.Sets, &sum.Files, &sum.Found, &sum.Bytes); err != nil {
			return nil, faults.Wrap(faults.ErrIndex, "catalog", "summarize", "scan", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "summarize", "", err)
	}
	return out, nil
}
