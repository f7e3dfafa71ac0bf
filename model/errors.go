package model

import "errors"

var (
	ErrUnsupportedLanguage  = errors.New("language is not configured")
	ErrUnsupportedFieldType = errors.New("multilingual field requires a text column")
	ErrInvalidValue         = errors.New("invalid column value")
	ErrUnknownColumn        = errors.New("unknown column")
	ErrSchemaFinalized      = errors.New("schema is already finalized")
	ErrDuplicateColumn      = errors.New("column already defined")
)
