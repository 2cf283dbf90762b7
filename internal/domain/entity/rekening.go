package entity

import "time"

// Rekening is a saved bank account in the shared transfer directory,
// unique per (no_rekening, bank) pair.
type Rekening struct {
	ID         int64     `json:"id"`
	NoRekening string    `json:"no_rekening"`
	Bank       string    `json:"bank"`
	Nama       string    `json:"nama"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}
