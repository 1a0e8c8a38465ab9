package service

import (
	"os"
	"path/filepath"

	"storyline/app/config"
)

// Database path - variable to allow testing with different paths
var dbPath = "data/badger"

var osExit = os.Exit

// Configure applies cfg's database path to the maintenance commands.
func Configure(cfg *config.Config) {
	if cfg != nil && cfg.DBPath != "" {
		dbPath = cfg.DBPath
	}
}

// backupDir sits next to the database directory.
func backupDir() string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}
