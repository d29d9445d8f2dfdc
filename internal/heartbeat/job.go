// Package heartbeat runs recurring prompt-driven agent checks.
//
// Jobs come from a YAML (or JSON) file that is watched for changes. At most
// one job runs at a time across the whole process; jobs that fire while
// another is running wait in a deduplicated FIFO queue.
package heartbeat

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aatumaykin/nexcrew/internal/constants"
)

// Schedule says how often a job fires. Only kind "every" is armed; other
// kinds are accepted and left inert.
type Schedule struct {
	Kind    string `yaml:"kind" json:"kind"`
	Minutes int    `yaml:"minutes" json:"minutes"`
}

// Job is one heartbeat definition.
type Job struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	Schedule Schedule `yaml:"schedule" json:"schedule"`
	Prompt   string   `yaml:"prompt" json:"prompt"`
}

// Armed reports whether the job gets a timer.
func (j Job) Armed() bool {
	return j.Enabled && j.Schedule.Kind == constants.ScheduleKindEvery
}

// Interval returns the timer period, with unit as one "minute".
func (j Job) Interval(unit time.Duration) time.Duration {
	return time.Duration(j.Schedule.Minutes) * unit
}

// Label returns the name, or the id when the job has no name.
func (j Job) Label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.ID
}

type jobFile struct {
	Jobs []Job `yaml:"jobs"`
}

// ParseJobs decodes a job file. Invalid entries are dropped and reported in
// skipped; err is set only when the document itself cannot be decoded.
func ParseJobs(data []byte) (jobs []Job, skipped []error, err error) {
	var file jobFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse job file: %w", err)
	}

	seen := make(map[string]bool, len(file.Jobs))
	for i, job := range file.Jobs {
		if verr := validate(job, seen); verr != nil {
			skipped = append(skipped, fmt.Errorf("job #%d: %w", i+1, verr))
			continue
		}
		seen[job.ID] = true
		jobs = append(jobs, job)
	}
	return jobs, skipped, nil
}

func validate(job Job, seen map[string]bool) error {
	switch {
	case job.ID == "":
		return errors.New("missing id")
	case seen[job.ID]:
		return fmt.Errorf("duplicate id %q", job.ID)
	case job.Schedule.Kind == constants.ScheduleKindEvery && job.Schedule.Minutes <= 0:
		return fmt.Errorf("job %q: minutes must be positive, got %d", job.ID, job.Schedule.Minutes)
	}
	return nil
}

// LoadJobs reads the job file at path. A missing file yields no jobs and no
// error.
func LoadJobs(path string) ([]Job, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read job file: %w", err)
	}
	return ParseJobs(data)
}
