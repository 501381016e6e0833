package payment

type initializeRequest struct {
	Reference   string         `json:"reference"`
	Amount      int64          `json:"amount"`
	Currency    string         `json:"currency"`
	Metadata    initializeMeta `json:"metadata"`
	CallbackURL string         `json:"callback_url"`
	Email       string         `json:"email,omitempty"`
}

type initializeMeta struct {
	FileUploadID int64  `json:"file_upload_id"`
	UniqueID     string `json:"unique_id"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// FileRef identifies the upload a transaction pays for.
type FileRef struct {
	ID       int64
	UniqueID string
}
