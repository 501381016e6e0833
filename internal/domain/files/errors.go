package files

import "errors"

var (
	ErrFileNotFound      = errors.New("file upload not found")
	ErrMissingFile       = errors.New("file name is missing or file is not present")
	ErrFileTooLarge      = errors.New("file too large")
	ErrTitleRequired     = errors.New("title is required")
	ErrExpired           = errors.New("the download link has expired")
	ErrForbidden         = errors.New("forbidden")
	ErrPaymentInitiation = errors.New("failed to initiate payment")
	ErrLinkGeneration    = errors.New("failed to generate download link")
	ErrDuplicateUniqueID = errors.New("unique id already taken")
)
