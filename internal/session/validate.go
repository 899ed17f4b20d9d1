// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput rejects credentials or registration payloads that the
// backend would refuse anyway, without contacting it.
func validateInput(operation string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return oops.Code("SESSION_INVALID_INPUT").With("operation", operation).Wrap(err)
	}

	fields := make([]string, 0, len(verrs))
	rules := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		rules[fe.Field()] = fe.Tag()
	}
	sort.Strings(fields)

	return oops.Code("SESSION_INVALID_INPUT").
		With("operation", operation).
		With("fields", fields).
		With("rules", rules).
		Errorf("invalid %s input: %v", operation, fields)
}
