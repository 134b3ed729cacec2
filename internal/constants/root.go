package constants

import "time"

const (
	AppName           = "dailyfix"
	DefaultConfigPath = "~/.config/dailyfix/dailyfix.json"
	Version           = "v0.3.0"

	// DateFormat is the calendar day format used for ledger keys (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// StoreKey names the snapshot row in the SQL stores. The suffix is the
	// snapshot schema generation; v1 stored a single completion per day.
	StoreKey = "dailyfix:v2"

	// SelectorNamespace prefixes every selection seed
	SelectorNamespace = "dailyfix"

	// Catalog constants
	DefaultLanguage       = "py"
	DefaultCatalogTimeout = 10 * time.Second
	MaxCatalogBytes       = 8 << 20 // remote catalogs larger than this are rejected
	BlankMarker           = "__BLANK__"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "dailyfix-"
	BackupFileSuffix = ".json"

	// Keyring constants
	DefaultKeyringUser = "database-connection"
	KeyringConfigValue = "keyring"

	// Lock constants
	LockfileName = "dailyfix.lock"

	// Log constants
	LogDirName  = "logs"
	LogFileName = "dailyfix.log"
)
