// Package taskfile parses YAML plan files into domain records.
// A plan file declares tasks with their dependencies, resources with
// per-window capacity, and effort assignments.
package taskfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/planweave/planweave/internal/domain"
)

// File is the parsed representation of one plan file.
type File struct {
	Project     string
	Tasks       []*domain.TaskRecord
	Resources   []domain.Resource
	Assignments []domain.Assignment
}

// YAML schema types. Fields are ordered to minimize memory padding.

type rawFile struct {
	Project     string          `yaml:"project"`
	Tasks       []rawTask       `yaml:"tasks"`
	Resources   []rawResource   `yaml:"resources"`
	Assignments []rawAssignment `yaml:"assignments"`
}

type rawTask struct {
	StartMins    *int64   `yaml:"start_mins"`
	DueMins      *int64   `yaml:"due_mins"`
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Status       string   `yaml:"status"`
	Priority     string   `yaml:"priority"`
	Resource     string   `yaml:"resource"`
	Depends      []rawDep `yaml:"depends"`
	Tags         []string `yaml:"tags"`
	DurationMins int64    `yaml:"duration_mins"`
}

type rawDep struct {
	On      string `yaml:"on"`
	Type    string `yaml:"type"`
	LagMins int64  `yaml:"lag_mins"`
}

type rawResource struct {
	ID                string   `yaml:"id"`
	Skills            []string `yaml:"skills"`
	CapacityPerWindow int64    `yaml:"capacity_per_window"`
}

type rawAssignment struct {
	Task            string `yaml:"task"`
	Resource        string `yaml:"resource"`
	EffortPerWindow int64  `yaml:"effort_per_window"`
}

// Load reads and parses a plan file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return Parse(data)
}

// Parse parses plan file contents. Records are validated for the
// constraints a parser can see: non-empty titles, non-negative
// durations, known statuses, priorities, and edge types. Referential
// checks (dangling dependencies) are deferred to graph construction.
func Parse(data []byte) (*File, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse plan file: %w", err)
	}

	f := &File{Project: raw.Project}
	for i, rt := range raw.Tasks {
		task, err := convertTask(rt, raw.Project)
		if err != nil {
			return nil, fmt.Errorf("task %d (%s): %w", i+1, rt.ID, err)
		}
		f.Tasks = append(f.Tasks, task)
	}
	for _, rr := range raw.Resources {
		f.Resources = append(f.Resources, domain.Resource{
			ID:                rr.ID,
			Skills:            rr.Skills,
			CapacityPerWindow: rr.CapacityPerWindow,
		})
	}
	for _, ra := range raw.Assignments {
		f.Assignments = append(f.Assignments, domain.Assignment{
			TaskID:          ra.Task,
			ResourceID:      ra.Resource,
			EffortPerWindow: ra.EffortPerWindow,
		})
	}
	return f, nil
}

func convertTask(rt rawTask, project string) (*domain.TaskRecord, error) {
	if rt.Title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if rt.DurationMins < 0 {
		return nil, domain.ErrNegativeDuration
	}

	status := domain.Status(rt.Status)
	if status == "" {
		status = domain.StatusPending
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, rt.Status)
	}

	priority := domain.Priority(rt.Priority)
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPriority, rt.Priority)
	}

	var deps []domain.Dependency
	for _, rd := range rt.Depends {
		typ := domain.EdgeType(rd.Type).Normalize()
		if !typ.IsValid() {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidEdgeType, rd.Type)
		}
		deps = append(deps, domain.Dependency{
			OnID:    rd.On,
			Type:    typ,
			LagMins: rd.LagMins,
		})
	}

	return &domain.TaskRecord{
		ID:           rt.ID,
		Title:        rt.Title,
		ProjectID:    project,
		ResourceID:   rt.Resource,
		Status:       status,
		Priority:     priority.Normalize(),
		Depends:      deps,
		Tags:         rt.Tags,
		DurationMins: rt.DurationMins,
		StartMins:    rt.StartMins,
		DueMins:      rt.DueMins,
	}, nil
}
