package repository

import (
	"context"

	"tooma/internal/domain"

	"gorm.io/gorm"
)

type BuyerInfoRepository struct {
	db *gorm.DB
}

func NewBuyerInfoRepository(db *gorm.DB) *BuyerInfoRepository {
	return &BuyerInfoRepository{db: db}
}

func (r *BuyerInfoRepository) Create(ctx context.Context, b *domain.BuyerInfo) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BuyerInfoRepository) GetByID(ctx context.Context, id int64) (*domain.BuyerInfo, error) {
	var b domain.BuyerInfo
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// FindFirstByEmail returns the oldest registration of email against the file.
func (r *BuyerInfoRepository) FindFirstByEmail(ctx context.Context, fileUploadID int64, email string) (*domain.BuyerInfo, error) {
	var b domain.BuyerInfo
	err := r.db.WithContext(ctx).
		Where("file_upload_id = ? AND buyer_email = ?", fileUploadID, email).
		Order("id ASC").
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BuyerInfoRepository) ListByFileID(ctx context.Context, fileUploadID int64) ([]domain.BuyerInfo, error) {
	var out []domain.BuyerInfo
	err := r.db.WithContext(ctx).
		Where("file_upload_id = ?", fileUploadID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// ListByOwnerID returns buyers across every upload owned by userID.
func (r *BuyerInfoRepository) ListByOwnerID(ctx context.Context, userID int64) ([]domain.BuyerInfo, error) {
	var out []domain.BuyerInfo
	err := r.db.WithContext(ctx).
		Joins("JOIN file_uploads ON file_uploads.id = buyer_infos.file_upload_id").
		Where("file_uploads.user_id = ?", userID).
		Order("buyer_infos.id ASC").
		Find(&out).Error
	return out, err
}

func (r *BuyerInfoRepository) UpdatePaymentLink(ctx context.Context, id int64, link string) error {
	return r.updateColumn(ctx, id, "payment_link", link)
}

func (r *BuyerInfoRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.BuyerPaymentStatus) error {
	return r.updateColumn(ctx, id, "payment_status", status)
}

func (r *BuyerInfoRepository) updateColumn(ctx context.Context, id int64, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.BuyerInfo{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
