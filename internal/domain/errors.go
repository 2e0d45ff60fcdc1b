package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrAuthRequired        = errors.New("upstream authentication required")
	ErrJobFailed           = errors.New("review job reported failure")
	ErrJobNotTerminal      = errors.New("review job has not reached a terminal state")
	ErrResultNotReady      = errors.New("review result not yet materialized")
	ErrDuplicateJob        = errors.New("review job already registered")
	ErrInvalidReportFormat = errors.New("invalid report format; allowed: pdf, html")
	ErrArchiveFailed       = errors.New("report archive to storage failed")
)
