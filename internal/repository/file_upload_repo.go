package repository

import (
	"context"
	"time"

	"tooma/internal/domain"

	"gorm.io/gorm"
)

type FileUploadRepository struct {
	db *gorm.DB
}

func NewFileUploadRepository(db *gorm.DB) *FileUploadRepository {
	return &FileUploadRepository{db: db}
}

func (r *FileUploadRepository) Create(ctx context.Context, f *domain.FileUpload) error {
	return r.db.WithContext(ctx).Omit("Buyers").Create(f).Error
}

func (r *FileUploadRepository) GetByUniqueID(ctx context.Context, uniqueID string) (*domain.FileUpload, error) {
	var f domain.FileUpload
	if err := r.db.WithContext(ctx).Where("unique_id = ?", uniqueID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FileUploadRepository) GetByID(ctx context.Context, id int64) (*domain.FileUpload, error) {
	var f domain.FileUpload
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// GetWithBuyers loads the upload together with its buyer rows in id order.
func (r *FileUploadRepository) GetWithBuyers(ctx context.Context, uniqueID string) (*domain.FileUpload, error) {
	var f domain.FileUpload
	err := r.db.WithContext(ctx).
		Preload("Buyers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("unique_id = ?", uniqueID).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Save writes every column of f. Buyer rows are never touched.
func (r *FileUploadRepository) Save(ctx context.Context, f *domain.FileUpload) error {
	return r.db.WithContext(ctx).Omit("Buyers").Save(f).Error
}

// UpdateFields writes only the given columns, leaving concurrent writes to
// other columns intact.
func (r *FileUploadRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.FileUpload{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *FileUploadRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.FileUpload{}, id).Error
}

func (r *FileUploadRepository) ListByUserID(ctx context.Context, userID int64) ([]domain.FileUpload, error) {
	var out []domain.FileUpload
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListExpiringUnnotified returns uploads whose expiry falls in [from, to) and
// whose owner has not been told yet.
func (r *FileUploadRepository) ListExpiringUnnotified(ctx context.Context, from, to time.Time, limit int) ([]domain.FileUpload, error) {
	var out []domain.FileUpload
	q := r.db.WithContext(ctx).
		Where("expires_at >= ? AND expires_at < ?", from, to).
		Where("expiry_notified_at IS NULL").
		Order("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *FileUploadRepository) MarkExpiryNotified(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.FileUpload{}).
		Where("id = ?", id).
		Update("expiry_notified_at", at).Error
}
