package entity

import "errors"

var (
	// ErrValidation is returned when input is malformed or missing
	ErrValidation = errors.New("data tidak valid")

	// ErrUnauthorized is returned when no authenticated session is present
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the actor's role or identity does not
	// permit the requested operation
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("tidak ditemukan")

	// ErrStaleStatus is returned by the store when a status-guarded update
	// matched no row because another transition won the race
	ErrStaleStatus = errors.New("status pengajuan sudah berubah")
)
