// Package jsonstore provides a JSON file-based implementation of the
// task repository, resource repository, and mutation collaborator.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/planweave/planweave/internal/domain"
)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Tasks       map[string]*domain.TaskRecord `json:"tasks"`
	Resources   map[string]*domain.Resource   `json:"resources"`
	Assignments []domain.Assignment           `json:"assignments"`
}

// Store implements the persistence ports using a JSON file.
type Store struct {
	path     string
	lockPath string
}

// Ensure Store implements the persistence ports.
var (
	_ domain.TaskRepository     = (*Store)(nil)
	_ domain.TaskMutator        = (*Store)(nil)
	_ domain.ResourceRepository = (*Store)(nil)
	_ domain.StoreInitializer   = (*Store)(nil)
)

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created by Initialize.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates an empty store file. Returns
// domain.ErrAlreadyInitialized if one exists.
func (s *Store) Initialize() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return domain.ErrAlreadyInitialized
	}

	data := &storeData{
		Tasks:     make(map[string]*domain.TaskRecord),
		Resources: make(map[string]*domain.Resource),
	}
	return s.write(data)
}

// Get retrieves a task by ID. Returns nil if not found.
func (s *Store) Get(id string) (*domain.TaskRecord, error) {
	var task *domain.TaskRecord
	err := s.withLock(func(data *storeData) error {
		if t, ok := data.Tasks[id]; ok {
			task = t
			task.ID = id
		}
		return nil
	})
	return task, err
}

// List retrieves tasks matching the filter, sorted by ID.
func (s *Store) List(filter domain.TaskFilter) ([]*domain.TaskRecord, error) {
	var tasks []*domain.TaskRecord
	err := s.withLock(func(data *storeData) error {
		for id, t := range data.Tasks {
			t.ID = id

			if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
				continue
			}
			if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, t.Status) {
				continue
			}
			if len(filter.Tags) > 0 && !containsAll(t.Tags, filter.Tags) {
				continue
			}
			tasks = append(tasks, t)
		}
		return nil
	})

	slices.SortFunc(tasks, func(a, b *domain.TaskRecord) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return tasks, err
}

// Save creates or updates a task.
func (s *Store) Save(task *domain.TaskRecord) error {
	return s.withLockWrite(func(data *storeData) error {
		data.Tasks[task.ID] = task
		return nil
	})
}

// Delete removes a task by ID.
func (s *Store) Delete(id string) error {
	return s.withLockWrite(func(data *storeData) error {
		delete(data.Tasks, id)
		return nil
	})
}

// ListResources retrieves all resources, sorted by ID.
func (s *Store) ListResources() ([]domain.Resource, error) {
	var resources []domain.Resource
	err := s.withLock(func(data *storeData) error {
		for id, r := range data.Resources {
			r.ID = id
			resources = append(resources, *r)
		}
		return nil
	})
	slices.SortFunc(resources, func(a, b domain.Resource) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return resources, err
}

// SaveResource creates or updates a resource.
func (s *Store) SaveResource(r domain.Resource) error {
	return s.withLockWrite(func(data *storeData) error {
		stored := r
		data.Resources[r.ID] = &stored
		return nil
	})
}

// ListAssignments retrieves all assignments.
func (s *Store) ListAssignments() ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	err := s.withLock(func(data *storeData) error {
		assignments = append(assignments, data.Assignments...)
		return nil
	})
	return assignments, err
}

// SaveAssignment records an effort allocation, replacing any existing
// allocation of the same task/resource pair. The resource must exist.
func (s *Store) SaveAssignment(a domain.Assignment) error {
	return s.withLockWrite(func(data *storeData) error {
		if _, ok := data.Resources[a.ResourceID]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrResourceNotFound, a.ResourceID)
		}
		for i := range data.Assignments {
			if data.Assignments[i].TaskID == a.TaskID && data.Assignments[i].ResourceID == a.ResourceID {
				data.Assignments[i] = a
				return nil
			}
		}
		data.Assignments = append(data.Assignments, a)
		return nil
	})
}

// Apply performs a bulk operation on one task and returns its prior
// state for rollback. Failures are reported as *domain.MutationError;
// file I/O errors are transient, validation errors are permanent.
func (s *Store) Apply(_ context.Context, taskID string, op domain.BulkOperation) (*domain.TaskRecord, error) {
	var prev *domain.TaskRecord
	err := s.withLockWrite(func(data *storeData) error {
		task, ok := data.Tasks[taskID]
		if !ok {
			return domain.NewPermanentMutationError(taskID, domain.ErrTaskNotFound)
		}
		task.ID = taskID
		prev = task.Clone()

		switch op.Kind {
		case domain.OpKindFieldUpdate:
			applyFieldUpdate(task, op.Field)
		case domain.OpKindStatusTransition:
			if !task.Status.CanTransitionTo(op.Status.To) {
				return domain.NewPermanentMutationError(taskID,
					fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, task.Status, op.Status.To))
			}
			task.Status = op.Status.To
		case domain.OpKindTagMutation:
			task.Tags = applyTags(task.Tags, op.Tags.Add, op.Tags.Remove)
		case domain.OpKindProjectMigration:
			task.ProjectID = op.Migrate.ToProjectID
		default:
			return domain.NewPermanentMutationError(taskID,
				fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidOperation, op.Kind))
		}
		return nil
	})
	if err != nil {
		var merr *domain.MutationError
		if errors.As(err, &merr) {
			return nil, err
		}
		// Lock or file failures may succeed on retry.
		return nil, domain.NewTransientMutationError(taskID, err)
	}
	return prev, nil
}

// Restore writes a previously returned snapshot back.
func (s *Store) Restore(_ context.Context, prev *domain.TaskRecord) error {
	return s.withLockWrite(func(data *storeData) error {
		data.Tasks[prev.ID] = prev.Clone()
		return nil
	})
}

// applyFieldUpdate copies the non-nil fields of the update onto the task.
func applyFieldUpdate(task *domain.TaskRecord, f *domain.FieldUpdate) {
	if f.Priority != nil {
		task.Priority = *f.Priority
	}
	if f.DurationMins != nil {
		task.DurationMins = *f.DurationMins
	}
	if f.DueMins != nil {
		v := *f.DueMins
		task.DueMins = &v
	}
	if f.ResourceID != nil {
		task.ResourceID = *f.ResourceID
	}
}

// applyTags adds and removes tags from the current set.
// Returns a new sorted slice with duplicates removed.
func applyTags(current, add, remove []string) []string {
	removeSet := make(map[string]bool, len(remove))
	for _, tag := range remove {
		removeSet[tag] = true
	}

	tagSet := make(map[string]bool)
	for _, tag := range current {
		if !removeSet[tag] {
			tagSet[tag] = true
		}
	}
	for _, tag := range add {
		if !removeSet[tag] {
			tagSet[tag] = true
		}
	}

	if len(tagSet) == 0 {
		return nil
	}
	result := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		result = append(result, tag)
	}
	slices.Sort(result)
	return result
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}
	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(data); err != nil {
		return err
	}
	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	if data.Tasks == nil {
		data.Tasks = make(map[string]*domain.TaskRecord)
	}
	if data.Resources == nil {
		data.Resources = make(map[string]*domain.Resource)
	}
	return &data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// containsAll checks if slice contains all elements in required.
func containsAll(slice, required []string) bool {
	for _, r := range required {
		if !slices.Contains(slice, r) {
			return false
		}
	}
	return true
}
