package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"alfredoptarigan/job-companion/internal/models"
)

type SalaryRepository interface {
	FindAll(ctx context.Context) ([]models.SalaryRecord, error)
	// ReplaceAll swaps the whole table contents inside one transaction.
	ReplaceAll(ctx context.Context, records []models.SalaryRecord) error
	Count(ctx context.Context) (int64, error)
}

type salaryRepository struct {
	db        *gorm.DB
	batchSize int
}

func NewSalaryRepository(db *gorm.DB) SalaryRepository {
	return &salaryRepository{db: db, batchSize: 500}
}

// FindAll implements SalaryRepository.
func (r *salaryRepository) FindAll(ctx context.Context) ([]models.SalaryRecord, error) {
	var records []models.SalaryRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find salary records: %w", err)
	}
	return records, nil
}

// ReplaceAll implements SalaryRepository.
func (r *salaryRepository) ReplaceAll(ctx context.Context, records []models.SalaryRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SalaryRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear salary records: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, r.batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert salary records: %w", err)
		}
		return nil
	})
}

// Count implements SalaryRepository.
func (r *salaryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SalaryRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count salary records: %w", err)
	}
	return count, nil
}
