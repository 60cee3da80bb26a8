package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/judhveer/easternpanorama-office-taskbot/internal/models"
	"gorm.io/gorm"
)

// Doers provides lookup and mutation access to the doer directory.
type Doers struct {
	db *gorm.DB
}

// NewDoers creates a Doers directory.
func NewDoers(db *gorm.DB) *Doers {
	return &Doers{db: db}
}

// FindByChannel returns the doer bound to the given actor channel.
func (d *Doers) FindByChannel(channel string) (*models.Doer, error) {
	if channel == "" {
		return nil, ErrNotFound
	}
	var doer models.Doer
	err := d.db.Where("channel_id = ?", channel).First(&doer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find doer by channel %s: %w", channel, err)
	}
	return &doer, nil
}

// FindByName returns the doer with the given name (case-insensitive).
func (d *Doers) FindByName(name string) (*models.Doer, error) {
	var doer models.Doer
	err := d.db.Where("name = ?", strings.ToUpper(strings.TrimSpace(name))).First(&doer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find doer by name %q: %w", name, err)
	}
	return &doer, nil
}

// Get fetches a doer by ID.
func (d *Doers) Get(id uint) (*models.Doer, error) {
	var doer models.Doer
	if err := d.db.First(&doer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get doer %d: %w", id, err)
	}
	return &doer, nil
}

// FindAllActive lists active, approved doers, optionally filtered by
// department, ordered by name.
func (d *Doers) FindAllActive(department string) ([]models.Doer, error) {
	q := d.db.Where("is_active = ? AND approval_status = ?", true, models.ApprovalApproved)
	if department != "" {
		q = q.Where("department = ?", department)
	}
	var doers []models.Doer
	if err := q.Order("name ASC").Find(&doers).Error; err != nil {
		return nil, fmt.Errorf("store: list active doers: %w", err)
	}
	return doers, nil
}

// Departments returns the distinct departments of active approved doers.
func (d *Doers) Departments() ([]string, error) {
	var departments []string
	err := d.db.Model(&models.Doer{}).
		Where("is_active = ? AND approval_status = ? AND department <> ''", true, models.ApprovalApproved).
		Distinct("department").Order("department ASC").
		Pluck("department", &departments).Error
	if err != nil {
		return nil, fmt.Errorf("store: list departments: %w", err)
	}
	return departments, nil
}

// WithChannel lists doers that have a chat channel bound, for broadcast.
func (d *Doers) WithChannel() ([]models.Doer, error) {
	var doers []models.Doer
	err := d.db.Where("channel_id <> ''").Order("name ASC").Find(&doers).Error
	if err != nil {
		return nil, fmt.Errorf("store: list doers with channel: %w", err)
	}
	return doers, nil
}

// All lists every doer, for the dashboard.
func (d *Doers) All() ([]models.Doer, error) {
	var doers []models.Doer
	if err := d.db.Order("name ASC").Find(&doers).Error; err != nil {
		return nil, fmt.Errorf("store: list doers: %w", err)
	}
	return doers, nil
}

// Create inserts a new doer record.
func (d *Doers) Create(doer *models.Doer) error {
	if err := d.db.Create(doer).Error; err != nil {
		return fmt.Errorf("store: create doer %q: %w", doer.Name, err)
	}
	return nil
}

// Update applies a column patch to a doer in a single store write.
func (d *Doers) Update(doer *models.Doer, patch map[string]interface{}) error {
	if err := d.db.Model(doer).Updates(patch).Error; err != nil {
		return fmt.Errorf("store: update doer %d: %w", doer.ID, err)
	}
	return nil
}

// Delete removes a doer record.
func (d *Doers) Delete(doer *models.Doer) error {
	if err := d.db.Delete(doer).Error; err != nil {
		return fmt.Errorf("store: delete doer %d: %w", doer.ID, err)
	}
	return nil
}
