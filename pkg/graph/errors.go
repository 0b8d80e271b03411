package graph

import "errors"

var (
	// ErrEmptyDocument is returned when a document yields no chunks after
	// cleaning and tokenization.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrAlreadyProcessing is returned when an ingestion is requested for a
	// document that is currently being processed.
	ErrAlreadyProcessing = errors.New("document is already being processed")

	errCancelled = errors.New("ingestion cancelled")
)
