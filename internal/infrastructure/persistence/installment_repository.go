package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/billing/backend/internal/domain/installment"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var installmentSortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"due_date":   true,
	"sequence":   true,
	"status":     true,
}

// GormInstallmentRepository implements installment.Repository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*installment.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContract finds all installments of a contract ordered by sequence
func (r *GormInstallmentRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]*installment.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("sequence ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	return toDomainInstallments(installmentModels), nil
}

// FindByClient finds all installments of a client ordered by due date
func (r *GormInstallmentRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*installment.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("due_date ASC, sequence ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	return toDomainInstallments(installmentModels), nil
}

// FindUnpaid finds every installment without a payment, across contracts
func (r *GormInstallmentRepository) FindUnpaid(ctx context.Context) ([]*installment.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("payment_date IS NULL").
		Order("due_date ASC, sequence ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	return toDomainInstallments(installmentModels), nil
}

// FindOverdue finds unpaid installments due strictly before the given day
func (r *GormInstallmentRepository) FindOverdue(ctx context.Context, before time.Time) ([]*installment.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("payment_date IS NULL AND due_date < ?", installment.DateOnly(before)).
		Order("due_date ASC, sequence ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	return toDomainInstallments(installmentModels), nil
}

// FindAll finds installments with filtering
func (r *GormInstallmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*installment.Installment, error) {
	var installmentModels []models.InstallmentModel
	query := r.db.WithContext(ctx).Model(&models.InstallmentModel{})
	query = r.applyFilter(query, filter)
	query = applyOrdering(query, filter, installmentSortable)
	query = applyPagination(query, filter)

	if err := query.Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	return toDomainInstallments(installmentModels), nil
}

// Save creates or updates a single installment
func (r *GormInstallmentRepository) Save(ctx context.Context, item *installment.Installment) error {
	model := models.InstallmentModelFromDomain(item)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveAll persists a batch of installments
func (r *GormInstallmentRepository) SaveAll(ctx context.Context, items []*installment.Installment) error {
	if len(items) == 0 {
		return nil
	}
	installmentModels := make([]*models.InstallmentModel, len(items))
	for i, item := range items {
		installmentModels[i] = models.InstallmentModelFromDomain(item)
	}
	return r.db.WithContext(ctx).Save(installmentModels).Error
}

// ReplaceForContract atomically deletes the given installments and inserts the
// new ones. The delete runs before the insert so sequence numbers freed by the
// delete can be reused without tripping the unique index.
func (r *GormInstallmentRepository) ReplaceForContract(ctx context.Context, contractID uuid.UUID, deleteIDs []uuid.UUID, create []*installment.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deleteIDs) > 0 {
			if err := tx.
				Where("contract_id = ? AND id IN ?", contractID, deleteIDs).
				Delete(&models.InstallmentModel{}).Error; err != nil {
				return err
			}
		}
		if len(create) > 0 {
			installmentModels := make([]*models.InstallmentModel, len(create))
			for i, item := range create {
				installmentModels[i] = models.InstallmentModelFromDomain(item)
			}
			if err := tx.Create(installmentModels).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByContract removes every installment of a contract
func (r *GormInstallmentRepository) DeleteByContract(ctx context.Context, contractID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Delete(&models.InstallmentModel{}).Error
}

// UpdateClientName refreshes the denormalized client name on all installments
// of the client
func (r *GormInstallmentRepository) UpdateClientName(ctx context.Context, clientID uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Where("client_id = ?", clientID).
		Update("client_name", name).Error
}

// Count counts installments matching the filter
func (r *GormInstallmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InstallmentModel{})
	query = r.applyFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInstallmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("client_name LIKE ? OR status LIKE ?", pattern, pattern)
	}
	return query
}

func toDomainInstallments(installmentModels []models.InstallmentModel) []*installment.Installment {
	items := make([]*installment.Installment, len(installmentModels))
	for i := range installmentModels {
		items[i] = installmentModels[i].ToDomain()
	}
	return items
}

var _ installment.Repository = (*GormInstallmentRepository)(nil)
