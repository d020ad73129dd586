package utils

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ErrInvalidPathParam is returned when a route parameter cannot be parsed.
var ErrInvalidPathParam = errors.New("invalid path parameter")

// ParseUUID parses a user id taken from the URL.
func ParseUUID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a uuid", ErrInvalidPathParam, value)
	}
	return id, nil
}

// ParseID parses a positive role or permission id taken from the URL.
func ParseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive id", ErrInvalidPathParam, value)
	}
	return id, nil
}
