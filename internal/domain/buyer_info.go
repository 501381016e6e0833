package domain

import "time"

// BuyerPaymentStatus is empty until the payment callback settles it.
type BuyerPaymentStatus string

const (
	BuyerPaymentPaid   BuyerPaymentStatus = "paid"
	BuyerPaymentFailed BuyerPaymentStatus = "failed"
)

// Order status values stored on BuyerInfo. "fulfil" marks an order whose
// file has no blob yet; the value is kept as-is for existing rows.
const (
	OrderStatusFulfilled = "fulfilled"
	OrderStatusPending   = "fulfil"
)

const DefaultRequirements = "No specific requirements."

// BuyerInfo is one buyer registration against a FileUpload. Rows are never
// deduplicated; the same email may register many times.
type BuyerInfo struct {
	ID            int64              `gorm:"primaryKey" json:"id"`
	FileUploadID  int64              `gorm:"index;not null" json:"file_upload"`
	BuyerEmail    string             `gorm:"type:varchar(254);index" json:"buyer_email"`
	BuyerName     string             `gorm:"type:varchar(255)" json:"buyer_name"`
	Requirements  string             `gorm:"type:text" json:"requirements"`
	PaymentStatus BuyerPaymentStatus `gorm:"type:varchar(20);index" json:"payment_status"`
	PaymentLink   *string            `gorm:"type:text" json:"payment_link"`
	OrderStatus   string             `gorm:"type:varchar(20)" json:"order_status"`
	PaymentAmount *string            `gorm:"type:varchar(32)" json:"payment_amount"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (BuyerInfo) TableName() string { return "buyer_infos" }
