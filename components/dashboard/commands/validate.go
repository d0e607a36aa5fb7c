package commands

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidInput marks command payloads rejected before reaching the service.
var ErrInvalidInput = errors.New("commands: invalid input")

var errMissingService = errors.New("commands: service is not configured")

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// distinct rejects string slices with repeated or blank entries.
var distinct = validation.By(func(value any) error {
	items, ok := value.([]string)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item == "" {
			return errors.New("must not contain blank ids")
		}
		if _, dup := seen[item]; dup {
			return fmt.Errorf("lists %s more than once", item)
		}
		seen[item] = struct{}{}
	}
	return nil
})
