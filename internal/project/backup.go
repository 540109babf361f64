package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/sheetnest/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
	Jobs      []model.Job     `json:"jobs"`
}

// ExportAllData exports the config and all saved jobs to a single JSON file
// at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, jobs []model.Job) error {
	if jobs == nil {
		jobs = []model.Job{}
	}
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Jobs:      jobs,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported config and jobs.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.SheetSizes == nil {
		backup.Config.SheetSizes = []model.MaterialSheet{}
	}
	if backup.Jobs == nil {
		backup.Jobs = []model.Job{}
	}
	return backup, nil
}

// RestoreBackup writes the backup's config to configPath and its jobs into
// jobsDir, overwriting jobs with the same ID.
func RestoreBackup(backup BackupData, configPath, jobsDir string) error {
	if err := SaveAppConfig(configPath, backup.Config); err != nil {
		return err
	}
	for _, job := range backup.Jobs {
		if err := SaveJob(JobPath(jobsDir, job), job); err != nil {
			return fmt.Errorf("restoring job %s: %w", job.ID, err)
		}
	}
	return nil
}
