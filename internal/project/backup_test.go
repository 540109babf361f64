package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/sheetnest/internal/model"
)

func TestExportImportAllData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.Nest.Kerf = 2.5
	cfg.SheetSizes = []model.MaterialSheet{{Material: "MDF", Width: 2800, Height: 2070}}
	jobs := []model.Job{testJob("Wardrobe")}

	if err := ExportAllData(path, cfg, jobs); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Version != BackupVersion {
		t.Errorf("expected version %s, got %s", BackupVersion, backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected non-empty created_at")
	}
	if backup.Config.Nest.Kerf != 2.5 {
		t.Errorf("expected kerf 2.5, got %f", backup.Config.Nest.Kerf)
	}
	if len(backup.Config.SheetSizes) != 1 {
		t.Errorf("expected 1 sheet size, got %d", len(backup.Config.SheetSizes))
	}
	if len(backup.Jobs) != 1 || backup.Jobs[0].Name != "Wardrobe" {
		t.Errorf("unexpected jobs %+v", backup.Jobs)
	}
}

func TestImportAllDataInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	if _, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noversion.json")
	if err := os.WriteFile(path, []byte(`{"config":{"nest":{"kerf":1}}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for missing version")
	}
}

func TestImportAllDataNilCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	data := []byte(`{"version":"1.0.0","created_at":"2025-01-01T00:00:00Z","config":{"sheet_sizes":null},"jobs":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Config.SheetSizes == nil || backup.Jobs == nil {
		t.Error("collections should not be nil after import")
	}
}

func TestRestoreBackup(t *testing.T) {
	dir := t.TempDir()
	cfg := model.DefaultAppConfig()
	cfg.Nest.Kerf = 1
	backup := BackupData{Version: BackupVersion, Config: cfg, Jobs: []model.Job{testJob("A"), testJob("B")}}

	configPath := filepath.Join(dir, "sheetnest.yaml")
	jobsDir := filepath.Join(dir, "jobs")
	if err := RestoreBackup(backup, configPath, jobsDir); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	loaded, err := LoadAppConfig(configPath)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if loaded.Nest.Kerf != 1 {
		t.Errorf("expected restored kerf 1, got %f", loaded.Nest.Kerf)
	}
	jobs, err := ListJobs(jobsDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Errorf("expected 2 restored jobs, got %d", len(jobs))
	}
}
