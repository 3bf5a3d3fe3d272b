package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProductNotFound = errors.New("product not found")
	ErrSKUConflict     = errors.New("SKU already exists")

	ErrNoFieldsToUpdate = fmt.Errorf("%w: no valid fields to update", ErrValidation)
)
