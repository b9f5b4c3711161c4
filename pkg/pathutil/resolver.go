// Package pathutil provides centralized path management for the ledger's
// data files and generated documents.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PathResolver manages paths for the ledger database, the settings store and
// generated exports/reports.
type PathResolver struct {
	dataDir      string
	dbPath       string
	settingsPath string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataDir is the root directory for all ledger data.
	DataDir string
	// DatabasePath is the ledger database file (optional).
	DatabasePath string
	// SettingsPath is the settings store file (optional).
	SettingsPath string
}

// New creates a new PathResolver.
// If DatabasePath is empty, it defaults to {DataDir}/ledger.db.
// If SettingsPath is empty, it defaults to {DataDir}/settings.db.
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.DataDir, "ledger.db")
	}

	settingsPath := config.SettingsPath
	if settingsPath == "" {
		settingsPath = filepath.Join(config.DataDir, "settings.db")
	}

	return &PathResolver{
		dataDir:      config.DataDir,
		dbPath:       dbPath,
		settingsPath: settingsPath,
	}
}

// DataDir returns the data root directory.
func (p *PathResolver) DataDir() string {
	return p.dataDir
}

// DatabasePath returns the ledger database file path.
func (p *PathResolver) DatabasePath() string {
	return p.dbPath
}

// SettingsPath returns the settings store file path.
func (p *PathResolver) SettingsPath() string {
	return p.settingsPath
}

// ExportPath returns a timestamped backup file path under {DataDir}/backups.
// Example: {DataDir}/backups/backup-2024-01-31-150405.json
func (p *PathResolver) ExportPath(at time.Time) string {
	name := fmt.Sprintf("backup-%s.json", at.Format("2006-01-02-150405"))
	return filepath.Join(p.dataDir, "backups", name)
}

// ReportPath returns a report file path under {DataDir}/reports.
// ext is "html" or "csv".
func (p *PathResolver) ReportPath(partnerName, ext string, at time.Time) string {
	name := fmt.Sprintf("%s-%s.%s", sanitizeFilename(partnerName), at.Format("2006-01-02"), ext)
	return filepath.Join(p.dataDir, "reports", name)
}

// EnsureDir creates a directory if it doesn't exist, parents included.
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// sanitizeFilename strips characters that are unsafe in file names and caps
// the length.
func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	if len(out) > 50 {
		out = out[:50]
	}
	return string(out)
}
