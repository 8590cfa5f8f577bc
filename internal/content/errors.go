package content

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// ErrDocumentIDRequired is returned when a store call carries a blank id.
var ErrDocumentIDRequired = errors.New("content: document id required")

// NotFoundError reports a missing document.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

func requireID(documentID string) error {
	if documentID == "" {
		return goerrors.Wrap(ErrDocumentIDRequired, goerrors.CategoryValidation, ErrDocumentIDRequired.Error()).
			WithTextCode("CONTENT_DOCUMENT_ID_REQUIRED")
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
