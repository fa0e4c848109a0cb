package transfer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// backupTimeLayout renders local time as yyyyMMdd-HHmmss.
const backupTimeLayout = "20060102-150405"

// BackupPath returns where an archive replaced at t is copied to.
func BackupPath(modsFolder, name string, t time.Time) string {
	return filepath.Join(modsFolder, BackupDirName, fmt.Sprintf("%s-%s.zip", name, t.Format(backupTimeLayout)))
}

// backupArchive copies src into the backup folder, overwriting a backup taken
// in the same second.
func backupArchive(modsFolder, src, name string, t time.Time) (string, error) {
	dst := BackupPath(modsFolder, name, t)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create backup folder: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copy backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}
