package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/piwi3910/sheetnest/internal/model"
)

// JobExt is the file extension used for saved jobs.
const JobExt = ".job.json"

// DefaultJobsDir returns the directory saved jobs are kept in.
func DefaultJobsDir() string {
	return filepath.Join(DefaultConfigDir(), "jobs")
}

// SaveJob writes a job to a JSON file.
func SaveJob(path string, job model.Job) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadJob reads a job from a JSON file.
func LoadJob(path string) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, err
	}
	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return model.Job{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if job.Parts == nil {
		job.Parts = []model.PartSpec{}
	}
	if job.SheetSizes == nil {
		job.SheetSizes = model.SheetSizeConfig{}
	}
	return job, nil
}

// ListJobs loads every saved job in dir, oldest first. A missing directory
// yields an empty list.
func ListJobs(dir string) ([]model.Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Job{}, nil
		}
		return nil, err
	}

	jobs := []model.Job{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), JobExt) {
			continue
		}
		job, err := LoadJob(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].CreatedAt < jobs[j].CreatedAt })
	return jobs, nil
}

// JobPath returns the file a job is saved under in dir.
func JobPath(dir string, job model.Job) string {
	return filepath.Join(dir, job.ID+JobExt)
}
