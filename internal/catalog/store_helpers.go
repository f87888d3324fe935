package catalog

import (
	"database/sql"
	"strings"
)

const fileColumns = "id, set_id, name, size, flags, crc, md5, sha1, comment, found"

func scanFile(scanner interface{ Scan(dest ...any) error }) (*FileRecord, error) {
	var (
		id      int64
		setID   sql.NullInt64
		name    string
		size    int64
		flags   sql.NullString
		crc     int64
		md5     sql.NullString
		sha1    sql.NullString
		comment sql.NullString
		found   int64
	)
	if err := scanner.Scan(&id, &setID, &name, &size, &flags, &crc, &md5, &sha1, &comment, &found); err != nil {
		return nil, err
	}
	return &FileRecord{
		ID:      id,
		SetID:   setID.Int64,
		Name:    name,
		Size:    size,
		CRC32:   uint32(crc),
		MD5:     md5.String,
		SHA1:    sha1.String,
		Flags:   flags.String,
		Comment: comment.String,
		Found:   found != 0,
	}, nil
}

func scanCollection(scanner interface{ Scan(dest ...any) error }) (*Collection, error) {
	var (
		c           Collection
		description sql.NullString
		version     sql.NullString
		comment     sql.NullString
		header      sql.NullString
	)
	if err := scanner.Scan(&c.ID, &c.Name, &c.Root, &description, &version, &comment, &header); err != nil {
		return nil, err
	}
	c.Description = description.String
	c.Version = version.String
	c.Comment = comment.String
	c.Header = header.String
	return &c, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
