package domain

import "time"

// FileUpload is an owner's shared file. UniqueID is the public handle used
// in every shareable URL.
type FileUpload struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	UserID           int64      `gorm:"index;not null" json:"user_id"`
	OwnerEmail       string     `gorm:"type:varchar(254)" json:"-"`
	UniqueID         string     `gorm:"type:varchar(10);uniqueIndex;not null" json:"unique_id"`
	FileKey          string     `gorm:"type:varchar(500)" json:"file"`
	BannerKey        string     `gorm:"type:varchar(500)" json:"banner"`
	S3DownloadLink   *string    `gorm:"type:text" json:"s3_download_link"`
	MetadataLink     *string    `gorm:"type:varchar(500)" json:"metadata_link"`
	ExpiresAt        time.Time  `gorm:"not null;index" json:"expires_at"`
	Title            string     `gorm:"type:varchar(255);not null" json:"title"`
	Message          string     `gorm:"type:text" json:"message"`
	RequestPayment   bool       `gorm:"not null;default:false" json:"request_payment"`
	PaymentAmount    *string    `gorm:"type:varchar(32)" json:"payment_amount"`
	PaymentLink      *string    `gorm:"type:text" json:"payment_link"`
	ExpiryNotifiedAt *time.Time `json:"-"`
	UploadedAt       time.Time  `gorm:"not null" json:"uploaded_at"`

	Buyers []BuyerInfo `gorm:"foreignKey:FileUploadID;constraint:OnDelete:CASCADE" json:"buyer_info,omitempty"`
}

func (FileUpload) TableName() string { return "file_uploads" }

// Expired reports whether the share window has closed at now.
func (f *FileUpload) Expired(now time.Time) bool {
	return f.ExpiresAt.Before(now)
}

// HasFile reports whether a stored blob is attached.
func (f *FileUpload) HasFile() bool {
	return f.FileKey != ""
}
