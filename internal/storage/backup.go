package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BackupManager handles database backup and restore.
type BackupManager struct {
	dbPath string
}

// NewBackupManager creates a backup manager for the given database path.
func NewBackupManager(dbPath string) *BackupManager {
	return &BackupManager{dbPath: dbPath}
}

// BackupOptions controls a single backup operation.
type BackupOptions struct {
	// Dir is the backup directory. Empty means <dbdir>/backups.
	Dir string

	// Name is the backup file name without extension. Empty means a
	// timestamped name.
	Name string

	// Passphrase, when set, produces an encrypted .db.enc backup.
	Passphrase string

	// Verify opens the finished backup and checks it is a readable
	// SQLite database. Skipped for encrypted backups.
	Verify bool
}

// DefaultBackupOptions returns options with verification enabled.
func DefaultBackupOptions() *BackupOptions {
	return &BackupOptions{Verify: true}
}

// Backup snapshots the database with VACUUM INTO, which is atomic and
// does not need an exclusive lock. Returns the path of the backup file.
func (bm *BackupManager) Backup(opts *BackupOptions) (string, error) {
	if opts == nil {
		opts = DefaultBackupOptions()
	}

	dir := opts.Dir
	if dir == "" {
		dir = bm.DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = "backup_" + time.Now().Format("20060102_150405")
	}
	backupPath := filepath.Join(dir, name+".db")

	src, err := sql.Open("sqlite", bm.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open source database: %w", err)
	}
	defer func() { _ = src.Close() }()

	if _, err := src.Exec(fmt.Sprintf("VACUUM INTO %q", backupPath)); err != nil {
		return "", fmt.Errorf("vacuum into backup failed: %w", err)
	}

	if opts.Verify {
		if err := bm.Verify(backupPath); err != nil {
			_ = os.Remove(backupPath)
			return "", fmt.Errorf("backup verification failed: %w", err)
		}
	}

	if opts.Passphrase != "" {
		encPath := backupPath + ".enc"
		if err := EncryptFile(backupPath, encPath, opts.Passphrase); err != nil {
			_ = os.Remove(encPath)
			return "", fmt.Errorf("backup encryption failed: %w", err)
		}
		_ = os.Remove(backupPath)
		return encPath, nil
	}

	return backupPath, nil
}

// Restore replaces the current database with the given backup. The
// caller must close any open connections first. Encrypted backups need
// the passphrase they were created with.
func (bm *BackupManager) Restore(backupPath, passphrase string) error {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	tempPath := bm.dbPath + ".restore.tmp"

	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		return fmt.Errorf("failed to inspect backup: %w", err)
	}

	if encrypted {
		if passphrase == "" {
			return fmt.Errorf("backup is encrypted, passphrase required")
		}
		if err := DecryptFile(backupPath, tempPath, passphrase); err != nil {
			_ = os.Remove(tempPath)
			return err
		}
	} else {
		if err := copyFile(backupPath, tempPath); err != nil {
			_ = os.Remove(tempPath)
			return err
		}
	}

	if err := bm.Verify(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("restored database verification failed: %w", err)
	}

	// Keep the current database around under a timestamped name.
	if _, err := os.Stat(bm.dbPath); err == nil {
		aside := bm.dbPath + ".old." + time.Now().Format("20060102_150405")
		if err := os.Rename(bm.dbPath, aside); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to set aside current database: %w", err)
		}
	}

	if err := os.Rename(tempPath, bm.dbPath); err != nil {
		return fmt.Errorf("failed to move restored database into place: %w", err)
	}
	return nil
}

// Verify checks that path is a readable SQLite database.
func (bm *BackupManager) Verify(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup as database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping backup database: %w", err)
	}

	var version string
	if err := db.QueryRow("SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query backup database: %w", err)
	}
	return nil
}

// BackupInfo describes a backup file on disk.
type BackupInfo struct {
	Path      string
	Name      string
	Size      int64
	ModTime   time.Time
	Checksum  string
	Encrypted bool
}

// List returns the backups in dir, or in the default directory when dir
// is empty.
func (bm *BackupManager) List(dir string) ([]BackupInfo, error) {
	if dir == "" {
		dir = bm.DefaultDir()
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		encrypted := strings.HasSuffix(name, ".db.enc")
		if !encrypted && filepath.Ext(name) != ".db" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, name)
		checksum, err := fileChecksum(path)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:      path,
			Name:      name,
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Checksum:  checksum,
			Encrypted: encrypted,
		})
	}

	return backups, nil
}

// DefaultDir returns the default backup directory next to the database.
func (bm *BackupManager) DefaultDir() string {
	return filepath.Join(filepath.Dir(bm.dbPath), "backups")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// fileChecksum returns the hex SHA-256 of a file.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
