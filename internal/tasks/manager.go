// Package tasks manages the local task and project stores.
package tasks

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"aegis/internal/models"
	"aegis/internal/storage"
)

// Manager owns the task and project maps and their JSON files:
//
//	<dir>/tasks.json
//	<dir>/projects.json
type Manager struct {
	mu       sync.RWMutex
	dir      string
	tasks    map[string]models.Task
	projects map[string]models.Project
}

// NewManager loads tasks and projects from dir, creating empty stores
// when the files do not exist yet.
func NewManager(dir string) (*Manager, error) {
	m := &Manager{
		dir:      dir,
		tasks:    map[string]models.Task{},
		projects: map[string]models.Project{},
	}

	if _, err := storage.Load(m.tasksPath(), &m.tasks); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	if _, err := storage.Load(m.projectsPath(), &m.projects); err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	log.Printf("📋 [TASKS] Task manager initialized (%d tasks, %d projects)", len(m.tasks), len(m.projects))
	return m, nil
}

func (m *Manager) tasksPath() string    { return filepath.Join(m.dir, "tasks.json") }
func (m *Manager) projectsPath() string { return filepath.Join(m.dir, "projects.json") }

func (m *Manager) saveTasks() {
	if err := storage.Save(m.tasksPath(), m.tasks); err != nil {
		log.Printf("⚠️ [TASKS] Error saving tasks: %v", err)
	}
}

func (m *Manager) saveProjects() {
	if err := storage.Save(m.projectsPath(), m.projects); err != nil {
		log.Printf("⚠️ [TASKS] Error saving projects: %v", err)
	}
}

// CreateTask adds a new task. Zero-value status and priority default to
// todo / medium.
func (m *Manager) CreateTask(task models.Task) models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	task.ID = uuid.New().String()
	if task.Status == "" {
		task.Status = models.TaskTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	now := models.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	m.tasks[task.ID] = task
	m.saveTasks()

	log.Printf("📋 [TASKS] Created task: %s (%s)", task.Title, task.ID)
	return task
}

// GetTask returns the task with the given ID.
func (m *Manager) GetTask(id string) (models.Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	return t, ok
}

// TaskUpdate carries optional field overrides for UpdateTask. Nil
// fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *string
	Tags        *[]string
	Platform    *string
	PlatformID  *string
}

// UpdateTask applies the given overrides and refreshes UpdatedAt.
func (m *Manager) UpdateTask(id string, upd TaskUpdate) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("unknown task: %s", id)
	}

	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.DueDate != nil {
		t.DueDate = *upd.DueDate
	}
	if upd.Tags != nil {
		t.Tags = *upd.Tags
	}
	if upd.Platform != nil {
		t.Platform = *upd.Platform
	}
	if upd.PlatformID != nil {
		t.PlatformID = *upd.PlatformID
	}
	t.UpdatedAt = models.Now()

	m.tasks[id] = t
	m.saveTasks()
	return t, nil
}

// DeleteTask removes the task with the given ID.
func (m *Manager) DeleteTask(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("unknown task: %s", id)
	}
	delete(m.tasks, id)
	m.saveTasks()
	return nil
}

// TaskFilter narrows ListTasks results. Status and Platform must match
// exactly; Tags matches a task carrying any of the listed tags.
type TaskFilter struct {
	Status   models.TaskStatus
	Platform string
	Tags     []string
}

// ListTasks returns every task matching the filter.
func (m *Manager) ListTasks(f TaskFilter) []models.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Task
	for _, t := range m.tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Platform != "" && t.Platform != f.Platform {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(t.Tags, f.Tags) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// CreateProject adds a new project.
func (m *Manager) CreateProject(project models.Project) models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()

	project.ID = uuid.New().String()
	now := models.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.TaskIDs == nil {
		project.TaskIDs = []string{}
	}

	m.projects[project.ID] = project
	m.saveProjects()

	log.Printf("📋 [TASKS] Created project: %s (%s)", project.Name, project.ID)
	return project
}

// GetProject returns the project with the given ID.
func (m *Manager) GetProject(id string) (models.Project, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	return p, ok
}

// ListProjects returns all projects.
func (m *Manager) ListProjects() []models.Project {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out
}

// DeleteProject removes the project with the given ID. Its tasks are
// kept.
func (m *Manager) DeleteProject(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return fmt.Errorf("unknown project: %s", id)
	}
	delete(m.projects, id)
	m.saveProjects()
	return nil
}

// AddTaskToProject links an existing task into a project. Linking the
// same task twice is a no-op.
func (m *Manager) AddTaskToProject(projectID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectID]
	if !ok {
		return fmt.Errorf("unknown project: %s", projectID)
	}
	if _, ok := m.tasks[taskID]; !ok {
		return fmt.Errorf("unknown task: %s", taskID)
	}
	for _, id := range p.TaskIDs {
		if id == taskID {
			return nil
		}
	}
	p.TaskIDs = append(p.TaskIDs, taskID)
	p.UpdatedAt = models.Now()
	m.projects[projectID] = p
	m.saveProjects()
	return nil
}

// ProjectTasks resolves a project's task IDs to tasks, skipping any
// that no longer exist.
func (m *Manager) ProjectTasks(projectID string) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("unknown project: %s", projectID)
	}
	var out []models.Task
	for _, id := range p.TaskIDs {
		if t, ok := m.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Stats aggregates counts across the store. Completion rate is 0 when
// there are no tasks.
func (m *Manager) Stats() models.TaskStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := models.TaskStats{
		TotalTasks:    len(m.tasks),
		TotalProjects: len(m.projects),
	}
	for _, t := range m.tasks {
		switch t.Status {
		case models.TaskCompleted:
			s.Completed++
		case models.TaskInProgress:
			s.InProgress++
		case models.TaskBlocked:
			s.Blocked++
		case models.TaskTodo:
			s.Todo++
		case models.TaskCancelled:
			s.Cancelled++
		}
	}
	if s.TotalTasks > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.TotalTasks) * 100
	}
	return s
}
