// Package store implements the Task Store and Doer Directory over GORM.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// Tasks provides CRUD and query access to task records.
type Tasks struct {
	db *gorm.DB
}

// NewTasks creates a Tasks store.
func NewTasks(db *gorm.DB) *Tasks {
	return &Tasks{db: db}
}

// Create inserts a new task and fills in its assigned ID.
func (t *Tasks) Create(task *models.Task) error {
	if err := t.db.Create(task).Error; err != nil {
		return fmt.Errorf("store: create task: %w", err)
	}
	return nil
}

// Get fetches a task by ID.
func (t *Tasks) Get(id uint) (*models.Task, error) {
	var task models.Task
	if err := t.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get task %d: %w", id, err)
	}
	return &task, nil
}

// Update applies a column patch to a task in a single store write.
func (t *Tasks) Update(task *models.Task, patch map[string]interface{}) error {
	if err := t.db.Model(task).Updates(patch).Error; err != nil {
		return fmt.Errorf("store: update task %d: %w", task.ID, err)
	}
	return nil
}

// TaskFilters narrows a List query. Zero values mean "no filter".
type TaskFilters struct {
	Statuses              []string
	Doer                  string // exact doer name
	CancellationRequested *bool
	HasExtensionRequest   bool
	DueOnOrBefore         *time.Time
	OrderBy               string // defaults to "created_at DESC"
	Limit                 int
}

// List returns tasks matching the filters.
func (t *Tasks) List(f TaskFilters) ([]models.Task, error) {
	q := t.db.Model(&models.Task{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.Doer != "" {
		q = q.Where("doer = ?", f.Doer)
	}
	if f.CancellationRequested != nil {
		q = q.Where("cancellation_requested = ?", *f.CancellationRequested)
	}
	if f.HasExtensionRequest {
		q = q.Where("extension_requested_date IS NOT NULL")
	}
	if f.DueOnOrBefore != nil {
		q = q.Where("due_date IS NOT NULL AND due_date <= ?", *f.DueOnOrBefore)
	}
	order := f.OrderBy
	if order == "" {
		order = "created_at DESC"
	}
	q = q.Order(order)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	return tasks, nil
}

// PageFilters narrows a paginated dashboard query.
type PageFilters struct {
	Status     string
	DoerLike   string     // substring match on the doer name
	DueOn      *time.Time // tasks due on this calendar day
	UrgentOnly bool
	Page       int
	Limit      int
}

// Page returns one page of tasks plus the total match count.
func (t *Tasks) Page(f PageFilters) ([]models.Task, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 50
	}

	q := t.db.Model(&models.Task{})
	if f.DueOn != nil {
		day := f.DueOn.Truncate(24 * time.Hour)
		q = q.Where("due_date >= ? AND due_date < ?", day, day.Add(24*time.Hour))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.DoerLike != "" {
		q = q.Where("doer LIKE ?", "%"+f.DoerLike+"%")
	}
	if f.UrgentOnly {
		q = q.Where("urgency = ?", models.UrgencyUrgent)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("store: count tasks: %w", err)
	}

	var tasks []models.Task
	err := q.Order("urgency DESC, doer ASC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("store: page tasks: %w", err)
	}
	return tasks, total, nil
}
