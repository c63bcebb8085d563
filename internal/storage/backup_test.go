package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// createTestDatabase creates a small on-disk database and returns its path.
func createTestDatabase(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec("CREATE TABLE builds (id INTEGER PRIMARY KEY, commander TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO builds (commander) VALUES ('Atraxa, Praetors'' Voice')"); err != nil {
		t.Fatalf("failed to insert row: %v", err)
	}

	return dbPath
}

func TestBackupManager_Backup(t *testing.T) {
	dbPath := createTestDatabase(t)
	bm := NewBackupManager(dbPath)

	backupPath, err := bm.Backup(DefaultBackupOptions())
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	if _, err := os.Stat(backupPath); err != nil {
		t.Fatalf("backup file not created: %v", err)
	}
	if filepath.Dir(backupPath) != bm.DefaultDir() {
		t.Errorf("backup written to %s, want directory %s", backupPath, bm.DefaultDir())
	}

	// Backup should contain the same data.
	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatalf("failed to open backup: %v", err)
	}
	defer func() { _ = db.Close() }()

	var commander string
	if err := db.QueryRow("SELECT commander FROM builds").Scan(&commander); err != nil {
		t.Fatalf("failed to query backup: %v", err)
	}
	if commander != "Atraxa, Praetors' Voice" {
		t.Errorf("commander = %q, want %q", commander, "Atraxa, Praetors' Voice")
	}
}

func TestBackupManager_BackupNamed(t *testing.T) {
	dbPath := createTestDatabase(t)
	bm := NewBackupManager(dbPath)

	backupPath, err := bm.Backup(&BackupOptions{Name: "before-rebuild", Verify: true})
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if filepath.Base(backupPath) != "before-rebuild.db" {
		t.Errorf("backup name = %s, want before-rebuild.db", filepath.Base(backupPath))
	}
}

func TestBackupManager_EncryptedBackup(t *testing.T) {
	dbPath := createTestDatabase(t)
	bm := NewBackupManager(dbPath)

	backupPath, err := bm.Backup(&BackupOptions{Passphrase: "correct horse battery"})
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if !strings.HasSuffix(backupPath, ".db.enc") {
		t.Errorf("encrypted backup path = %s, want .db.enc suffix", backupPath)
	}

	encrypted, err := IsEncrypted(backupPath)
	if err != nil {
		t.Fatalf("IsEncrypted() error = %v", err)
	}
	if !encrypted {
		t.Error("IsEncrypted() = false for encrypted backup")
	}

	// The plaintext intermediate must not remain on disk.
	plainPath := strings.TrimSuffix(backupPath, ".enc")
	if _, err := os.Stat(plainPath); !os.IsNotExist(err) {
		t.Errorf("plaintext backup %s left behind", plainPath)
	}
}

func TestBackupManager_RestoreEncrypted(t *testing.T) {
	dbPath := createTestDatabase(t)
	bm := NewBackupManager(dbPath)

	backupPath, err := bm.Backup(&BackupOptions{Passphrase: "s3cret"})
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	// Wreck the live database, then restore.
	if err := os.WriteFile(dbPath, []byte("not a database"), 0o600); err != nil {
		t.Fatalf("failed to overwrite database: %v", err)
	}

	if err := bm.Restore(backupPath, "wrong"); err == nil {
		t.Fatal("Restore() with wrong passphrase succeeded")
	}

	if err := bm.Restore(backupPath, "s3cret"); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open restored database: %v", err)
	}
	defer func() { _ = db.Close() }()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM builds").Scan(&count); err != nil {
		t.Fatalf("failed to query restored database: %v", err)
	}
	if count != 1 {
		t.Errorf("restored row count = %d, want 1", count)
	}
}

func TestBackupManager_RestoreRequiresPassphrase(t *testing.T) {
	dbPath := createTestDatabase(t)
	bm := NewBackupManager(dbPath)

	backupPath, err := bm.Backup(&BackupOptions{Passphrase: "s3cret"})
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	err = bm.Restore(backupPath, "")
	if err == nil || !strings.Contains(err.Error(), "passphrase required") {
		t.Errorf("Restore() without passphrase = %v, want passphrase required error", err)
	}
}

func TestBackupManager_List(t *testing.T) {
	dbPath := createTestDatabase(t)
	bm := NewBackupManager(dbPath)

	if _, err := bm.Backup(&BackupOptions{Name: "plain"}); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if _, err := bm.Backup(&BackupOptions{Name: "locked", Passphrase: "pw"}); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	backups, err := bm.List("")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("List() returned %d backups, want 2", len(backups))
	}

	byName := make(map[string]BackupInfo)
	for _, b := range backups {
		byName[b.Name] = b
	}
	if b, ok := byName["plain.db"]; !ok || b.Encrypted {
		t.Errorf("plain.db missing or marked encrypted: %+v", b)
	}
	if b, ok := byName["locked.db.enc"]; !ok || !b.Encrypted {
		t.Errorf("locked.db.enc missing or not marked encrypted: %+v", b)
	}
	for _, b := range backups {
		if b.Checksum == "" || b.Size == 0 {
			t.Errorf("backup %s missing checksum or size", b.Name)
		}
	}
}

func TestBackupManager_ListEmptyDir(t *testing.T) {
	bm := NewBackupManager(filepath.Join(t.TempDir(), "nope.db"))

	backups, err := bm.List("")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("List() returned %d backups, want 0", len(backups))
	}
}
