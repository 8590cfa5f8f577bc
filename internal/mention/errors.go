package mention

import (
	"errors"
	"strings"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeLabelUnencodable = "MENTION_LABEL_UNENCODABLE"
	codeLabelEmpty       = "MENTION_LABEL_EMPTY"
	codeIDInvalid        = "MENTION_ID_INVALID"
)

var (
	// ErrLabelUnencodable is returned when a label holds a closing bracket.
	ErrLabelUnencodable = errors.New("mention: label contains ']'")
	// ErrLabelEmpty is returned for an empty label.
	ErrLabelEmpty = errors.New("mention: label is empty")
	// ErrIDInvalid is returned when the id would break the token grammar.
	ErrIDInvalid = errors.New("mention: id is empty or contains reserved characters")
)

var encodingCodes = map[string]struct{}{
	codeLabelUnencodable: {},
	codeLabelEmpty:       {},
	codeIDInvalid:        {},
}

// IsEncodingError reports whether err was produced by Encode.
func IsEncodingError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLabelUnencodable) || errors.Is(err, ErrLabelEmpty) || errors.Is(err, ErrIDInvalid) {
		return true
	}
	var gerr *goerrors.Error
	if errors.As(err, &gerr) {
		_, ok := encodingCodes[gerr.TextCode]
		return ok
	}
	return false
}

func validateLabel(label string) error {
	if label == "" {
		return encodingError(ErrLabelEmpty, codeLabelEmpty)
	}
	if strings.ContainsRune(label, ']') {
		return encodingError(ErrLabelUnencodable, codeLabelUnencodable)
	}
	return nil
}

func validateID(id string) error {
	if id == "" {
		return encodingError(ErrIDInvalid, codeIDInvalid)
	}
	for _, r := range id {
		if r == ')' || r == ']' || unicode.IsSpace(r) {
			return encodingError(ErrIDInvalid, codeIDInvalid)
		}
	}
	return nil
}

func encodingError(err error, code string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithTextCode(code)
}
