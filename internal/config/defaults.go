package config

const (
	defaultConfigPath     = "~/.config/fileset/config.toml"
	defaultDatabasePath   = "~/.fileset.db"
	defaultEncoding       = "utf-8"
	defaultDialect        = "delimited"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	databaseEnvOverride   = "FILESET_DB"
	archiveFormatZip      = "zip"
	archiveFormatRar      = "rar"
	archiveFormatSevenZip = "7z"
)

// ArchiveFormats lists every archive format traversal can open, in probe order.
var ArchiveFormats = []string{archiveFormatZip, archiveFormatRar, archiveFormatSevenZip}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Database: defaultDatabasePath,
		},
		Catalog: Catalog{
			Encoding:       defaultEncoding,
			DefaultDialect: defaultDialect,
		},
		Scan: Scan{
			Archives: append([]string(nil), ArchiveFormats...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
