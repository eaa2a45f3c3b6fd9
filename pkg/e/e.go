package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки структуры каталога
	ErrDuplicateCategory = fmt.Errorf("category already exists")
	ErrCategoryNotFound  = fmt.Errorf("category not found")
	ErrProductNotFound   = fmt.Errorf("product not found")

	// Ошибки документа каталога
	ErrMalformedDocument = fmt.Errorf("malformed catalog document")
	ErrNoRemoteData      = fmt.Errorf("no remote catalog document")
	ErrNoSnapshot        = fmt.Errorf("no local catalog snapshot")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrCategoryNameRequired = fmt.Errorf("category name is required")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrInvalidStore         = fmt.Errorf("unknown store in product link")
	ErrInvalidTheme         = fmt.Errorf("theme must be dark or light")
	ErrInvalidIndex         = fmt.Errorf("invalid product index")
	ErrTooManyImages        = fmt.Errorf("too many images")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
