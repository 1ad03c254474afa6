// file: internal/backup/backup.go
// version: 2.0.0
// guid: a63b9638-bcdb-4dda-b0cd-f540a012f237

package backup

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jdfalk/readora/internal/cache"
	"github.com/jdfalk/readora/internal/database"
)

// Archive layout: a gzipped tar with two members.
const (
	manifestName = "manifest.json"
	entriesName  = "entries.json"
	filePrefix   = "readora_"
	fileSuffix   = ".tar.gz"
)

// ErrChecksumMismatch is returned by Restore when the entries payload does
// not match the manifest.
var ErrChecksumMismatch = errors.New("backup checksum mismatch")

// BackupInfo contains information about a backup
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Keys      int       `json:"keys"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// manifest describes the entries member.
type manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Keys      int       `json:"keys"`
	SHA256    string    `json:"sha256"`
}

// BackupConfig holds backup configuration
type BackupConfig struct {
	BackupDir        string
	MaxBackups       int
	CompressionLevel int
	// IncludeCache also exports cached catalog responses. They expire
	// anyway, so they are skipped by default.
	IncludeCache bool
}

// DefaultBackupConfig returns default backup configuration
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{
		BackupDir:        "backups",
		MaxBackups:       10,
		CompressionLevel: gzip.BestCompression,
	}
}

// CreateBackup exports every key in store into a new archive under
// cfg.BackupDir, then prunes archives beyond cfg.MaxBackups.
func CreateBackup(store database.Store, cfg BackupConfig) (*BackupInfo, error) {
	if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	entries, err := snapshot(store, cfg.IncludeCache)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entries: %w", err)
	}
	sum := sha256.Sum256(payload)
	created := time.Now().UTC()
	man := manifest{Version: 1, CreatedAt: created, Keys: len(entries), SHA256: hex.EncodeToString(sum[:])}

	backupFilename := filePrefix + created.Format("20060102_150405.000") + fileSuffix
	backupPath := filepath.Join(cfg.BackupDir, backupFilename)
	if err := writeArchive(backupPath, man, payload, cfg.CompressionLevel); err != nil {
		os.Remove(backupPath)
		return nil, err
	}

	fileInfo, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}
	info := &BackupInfo{
		Filename:  backupFilename,
		Path:      backupPath,
		Size:      fileInfo.Size(),
		Keys:      man.Keys,
		Checksum:  man.SHA256,
		CreatedAt: created,
	}
	log.Printf("[INFO] backup: wrote %d keys to %s", info.Keys, backupPath)

	if err := cleanupOldBackups(cfg.BackupDir, cfg.MaxBackups); err != nil {
		log.Printf("[WARN] backup: failed to clean up old backups: %v", err)
	}
	return info, nil
}

func snapshot(store database.Store, includeCache bool) (map[string]string, error) {
	keys, err := store.ListKeys("")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	entries := make(map[string]string, len(keys))
	for _, key := range keys {
		if !includeCache && strings.HasPrefix(key, cache.KeyPrefix) {
			continue
		}
		val, ok, err := store.GetString(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", key, err)
		}
		if ok {
			entries[key] = val
		}
	}
	return entries, nil
}

func writeArchive(path string, man manifest, payload []byte, level int) error {
	backupFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer backupFile.Close()

	gzipWriter, err := gzip.NewWriterLevel(backupFile, level)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	tarWriter := tar.NewWriter(gzipWriter)

	manBytes, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	for _, m := range []struct {
		name string
		data []byte
	}{{manifestName, manBytes}, {entriesName, payload}} {
		header := &tar.Header{
			Name:    m.name,
			Mode:    0644,
			Size:    int64(len(m.data)),
			ModTime: man.CreatedAt,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write %s header: %w", m.name, err)
		}
		if _, err := tarWriter.Write(m.data); err != nil {
			return fmt.Errorf("failed to write %s: %w", m.name, err)
		}
	}

	// Close writers to ensure all data is flushed
	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return backupFile.Close()
}

// readArchive returns the manifest and the raw entries payload.
func readArchive(path string) (manifest, []byte, error) {
	var man manifest
	var payload []byte
	var haveManifest bool

	backupFile, err := os.Open(path)
	if err != nil {
		return man, nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer backupFile.Close()

	gzipReader, err := gzip.NewReader(backupFile)
	if err != nil {
		return man, nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return man, nil, fmt.Errorf("failed to read tar header: %w", err)
		}
		data, err := io.ReadAll(tarReader)
		if err != nil {
			return man, nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		switch header.Name {
		case manifestName:
			if err := json.Unmarshal(data, &man); err != nil {
				return man, nil, fmt.Errorf("invalid manifest: %w", err)
			}
			haveManifest = true
		case entriesName:
			payload = data
		default:
			log.Printf("[WARN] backup: ignoring unexpected member %s", header.Name)
		}
	}

	if !haveManifest || payload == nil {
		return man, nil, fmt.Errorf("%s is not a readora backup", path)
	}
	return man, payload, nil
}

// RestoreBackup writes every entry in the archive into store. With verify
// the payload is checked against the manifest checksum first. Existing keys
// not in the archive are left alone.
func RestoreBackup(backupPath string, store database.Store, verify bool) (int, error) {
	man, payload, err := readArchive(backupPath)
	if err != nil {
		return 0, err
	}
	if verify {
		sum := sha256.Sum256(payload)
		if got := hex.EncodeToString(sum[:]); got != man.SHA256 {
			return 0, fmt.Errorf("%w: manifest %s, payload %s", ErrChecksumMismatch, man.SHA256, got)
		}
	}

	var entries map[string]string
	if err := json.Unmarshal(payload, &entries); err != nil {
		return 0, fmt.Errorf("invalid entries payload: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	restored := 0
	var errs []error
	for _, k := range keys {
		if err := store.SetString(k, entries[k]); err != nil {
			errs = append(errs, err)
			continue
		}
		restored++
	}
	log.Printf("[INFO] backup: restored %d of %d keys from %s", restored, len(keys), backupPath)
	return restored, errors.Join(errs...)
}

// ListBackups lists all available backups, newest first.
func ListBackups(backupDir string) ([]BackupInfo, error) {
	var backups []BackupInfo

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return backups, nil // No backups directory yet
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		backupPath := filepath.Join(backupDir, name)
		b := BackupInfo{
			Filename:  name,
			Path:      backupPath,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		}
		if man, _, err := readArchive(backupPath); err == nil {
			b.Keys = man.Keys
			b.Checksum = man.SHA256
			b.CreatedAt = man.CreatedAt
		} else {
			log.Printf("[WARN] backup: unreadable archive %s: %v", name, err)
		}
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// DeleteBackup deletes a specific backup file
func DeleteBackup(backupPath string) error {
	if err := os.Remove(backupPath); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

// cleanupOldBackups removes the oldest backups beyond maxBackups.
func cleanupOldBackups(backupDir string, maxBackups int) error {
	if maxBackups <= 0 {
		return nil
	}
	backups, err := ListBackups(backupDir)
	if err != nil {
		return err
	}
	if len(backups) <= maxBackups {
		return nil
	}

	for _, b := range backups[maxBackups:] {
		if err := os.Remove(b.Path); err != nil {
			log.Printf("[WARN] backup: failed to delete old backup %s: %v", b.Filename, err)
		}
	}
	return nil
}
