package files

import (
	"bytes"
	"encoding/json"
	"strings"

	"tooma/internal/domain"
)

// amountField accepts both "50.00" and 50.00 in JSON bodies.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amountField(n.String())
	return nil
}

type UpdateRequest struct {
	Title         *string      `json:"title" validate:"omitempty,max=255"`
	Message       *string      `json:"message"`
	PaymentAmount *amountField `json:"payment_amount"`
}

func (r UpdateRequest) toInput() UpdateInput {
	in := UpdateInput{Title: r.Title, Message: r.Message}
	if r.PaymentAmount != nil {
		s := strings.TrimSpace(string(*r.PaymentAmount))
		in.PaymentAmount = &s
	}
	return in
}

type CreateResponse struct {
	UniqueID       string  `json:"unique_id"`
	S3DownloadLink *string `json:"s3_download_link"`
	MetadataLink   *string `json:"metadata_link"`
	PaymentLink    *string `json:"payment_link"`
	PaymentStatus  *string `json:"payment_status"`
}

// paymentStatusPending is reported for uploads with an open owner payment link.
const paymentStatusPending = "pending"

func newCreateResponse(f *domain.FileUpload) CreateResponse {
	resp := CreateResponse{
		UniqueID:       f.UniqueID,
		S3DownloadLink: f.S3DownloadLink,
		MetadataLink:   f.MetadataLink,
		PaymentLink:    f.PaymentLink,
	}
	if f.RequestPayment {
		s := paymentStatusPending
		resp.PaymentStatus = &s
	}
	return resp
}
