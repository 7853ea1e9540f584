package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	commonerrors "pinboard/internal/common/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs validator tags against a decoded request body and
// converts the first failure into a 400 domain error naming the field.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		return commonerrors.NewDomainError(
			"INVALID_PAYLOAD",
			commonerrors.CategoryValidation,
			http.StatusBadRequest,
			fmt.Sprintf("invalid or missing field: %s", field),
		)
	}

	return commonerrors.ErrInvalidPayload.WithCause(err)
}

func ValidateUUID(s string) error {
	if s == "" {
		return errors.New("empty uuid")
	}
	_, err := uuid.Parse(s)
	return err
}

// ExtractPathID pulls the id segment from paths like /api/annotations/{id}.
// The id must be the final segment; anything after it fails the match.
func ExtractPathID(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}

	remaining := strings.TrimPrefix(path, prefix)
	if remaining == "" || strings.Contains(remaining, "/") {
		return "", false
	}

	return remaining, true
}
