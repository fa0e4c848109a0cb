package checks

import (
	"fmt"
	"os"
	"path/filepath"

	"mod-sync/core/transfer"

	"go.uber.org/zap"
)

// RequiredFolders lists the folders that must exist for a sync pass. The
// backup folder is only required when backups are enabled.
func RequiredFolders(modsFolder string, backups bool) []string {
	folders := []string{modsFolder}
	if backups {
		folders = append(folders, filepath.Join(modsFolder, transfer.BackupDirName))
	}
	return folders
}

// CheckStructure returns a list of missing folders.
func CheckStructure(modsFolder string, backups bool) ([]string, error) {
	if modsFolder == "" {
		return nil, fmt.Errorf("mods folder is not configured")
	}

	var missing []string
	for _, folder := range RequiredFolders(modsFolder, backups) {
		info, err := os.Stat(folder)
		if os.IsNotExist(err) {
			missing = append(missing, folder)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to inspect %s: %w", folder, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s exists but is not a folder", folder)
		}
	}

	return missing, nil
}

// FixStructure creates the missing folders.
func FixStructure(logger *zap.Logger, missing []string) error {
	for _, folder := range missing {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			logger.Error("Failed to create folder", zap.String("folder", folder), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", folder))
	}
	return nil
}
