package buyers

import "tooma/internal/domain"

type RegisterRequest struct {
	BuyerEmail    string  `json:"buyer_email" form:"buyer_email" validate:"omitempty,email,max=254"`
	BuyerName     string  `json:"buyer_name" form:"buyer_name" validate:"max=255"`
	Requirements  *string `json:"requirements" form:"requirements"`
	PaymentStatus string  `json:"payment_status" form:"payment_status" validate:"max=20"`
}

func (r RegisterRequest) toInput() RegisterInput {
	return RegisterInput{
		Email:         r.BuyerEmail,
		Name:          r.BuyerName,
		Requirements:  r.Requirements,
		PaymentStatus: r.PaymentStatus,
	}
}

type RegisterResponse struct {
	ID            int64                     `json:"id"`
	PaymentLink   *string                   `json:"payment_link"`
	OrderStatus   string                    `json:"order_status"`
	PaymentStatus domain.BuyerPaymentStatus `json:"payment_status"`
}

type VerifyRequest struct {
	BuyerEmail string `json:"buyer_email" form:"buyer_email" validate:"required"`
}
