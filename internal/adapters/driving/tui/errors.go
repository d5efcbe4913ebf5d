package tui

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("tui: ask service is required")

// ErrMissingCorpusStore is returned when the corpus store is not provided.
var ErrMissingCorpusStore = errors.New("tui: corpus store is required")
