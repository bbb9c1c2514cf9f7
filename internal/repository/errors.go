package repository

import "errors"

var (
	ErrNotFound         = errors.New("entity not found")
	ErrConnectionFailed = errors.New("storage connection failed")
	ErrCatalogFailed    = errors.New("catalog request failed")
)
