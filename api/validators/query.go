package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/wifstudio/catalog-mirror/pkg/errors"
)

var validate = validator.New()

// ListProductsQuery carries the pagination parameters of a product listing.
type ListProductsQuery struct {
	Limit  int `validate:"omitempty,min=1,max=100"`
	Offset int `validate:"omitempty,min=0"`
}

// ParseListProductsQuery reads and validates limit/offset query parameters.
func ParseListProductsQuery(r *http.Request) (ListProductsQuery, error) {
	var query ListProductsQuery
	var err error

	if query.Limit, err = parseQueryInt(r, "limit"); err != nil {
		return query, err
	}
	if query.Offset, err = parseQueryInt(r, "offset"); err != nil {
		return query, err
	}

	if err := validate.Struct(query); err != nil {
		return query, formatValidationErrors(err)
	}
	return query, nil
}

func parseQueryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[strings.ToLower(fieldErr.Field())] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
