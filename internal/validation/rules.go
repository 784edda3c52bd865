// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/nodesecrets/internal/errors"
)

var (
	// nodeIDRegex matches node identifiers: hostname-like tokens with no
	// whitespace and none of the secrets file delimiters.
	nodeIDRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NodeID validates a node identifier. Node identifiers are used as keys in
// the secrets file, so they must not contain the comma field delimiter,
// the colon pair delimiter, or whitespace.
type NodeID struct {
	// MaxLength bounds the identifier length; zero means the default of 255.
	MaxLength int
}

// Validate checks the node identifier.
func (n NodeID) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_node_id", "node id must be a string")
	}

	if s == "" {
		return validation.NewError("validation_node_id_empty", "node id must not be empty")
	}

	maxLength := n.MaxLength
	if maxLength == 0 {
		maxLength = 255
	}
	if len(s) > maxLength {
		return validation.NewError("validation_node_id_length", "node id is too long")
	}

	if !nodeIDRegex.MatchString(s) {
		return validation.NewError(
			"validation_node_id_charset",
			"node id may only contain letters, digits, '.', '_' and '-'",
		)
	}

	return nil
}

// SecretToken validates an opaque secret token for file-format safety: it
// must be non-empty and contain no comma, colon, or whitespace, so it can
// round-trip through the delimited secrets file.
type SecretToken struct{}

// Validate checks the secret token.
func (SecretToken) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_secret_token", "secret must be a string")
	}

	if s == "" {
		return validation.NewError("validation_secret_token_empty", "secret must not be empty")
	}

	if strings.ContainsAny(s, ",:") {
		return validation.NewError(
			"validation_secret_token_delimiter",
			"secret must not contain ',' or ':'",
		)
	}

	for _, r := range s {
		if unicode.IsSpace(r) {
			return validation.NewError(
				"validation_secret_token_whitespace",
				"secret must not contain whitespace",
			)
		}
	}

	return nil
}
