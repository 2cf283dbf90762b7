package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/kdninv/nota-api/pkg/terbilang"
)

// Status values for Pengajuan
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusFinished = "finished"
)

// PengajuanItem is a single line item on a nota. Total is derived, never
// accepted from the caller.
type PengajuanItem struct {
	NamaBarang string `json:"nama_barang"`
	Jumlah     int64  `json:"jumlah"`
	Satuan     string `json:"satuan"`
	Harga      int64  `json:"harga"`
	Total      int64  `json:"total"`
}

// FileAttachment is an uploaded proof file stored in Cloudinary.
type FileAttachment struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Name     string `json:"name"`
}

// Pengajuan is an expense nota request. Once created it is never deleted;
// it only moves through the approval lifecycle.
type Pengajuan struct {
	ID      string `json:"id"`
	NoNota  string `json:"no_nota"`
	Tanggal string `json:"tanggal"`
	Divisi  string `json:"divisi,omitempty"`

	RekeningSumber   string `json:"rekening_sumber,omitempty"`
	BankSumber       string `json:"bank_sumber,omitempty"`
	NamaSumber       string `json:"nama_sumber,omitempty"`
	RekeningPenerima string `json:"rekening_penerima,omitempty"`
	BankPenerima     string `json:"bank_penerima,omitempty"`
	NamaPenerima     string `json:"nama_penerima,omitempty"`

	Items               []PengajuanItem  `json:"items"`
	GrandTotal          int64            `json:"grand_total"`
	GrandTotalTerbilang string           `json:"grand_total_terbilang"`
	Files               []FileAttachment `json:"files,omitempty"`
	Keterangan          string           `json:"keterangan,omitempty"`

	Status string `json:"status"`

	SubmittedBy         int64     `json:"submitted_by"`
	SubmittedByUsername string    `json:"submitted_by_username"`
	SubmittedByFullName string    `json:"submitted_by_full_name,omitempty"`
	SubmittedAt         time.Time `json:"submitted_at"`

	ApprovedBy         *int64     `json:"approved_by,omitempty"`
	ApprovedByUsername string     `json:"approved_by_username,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`

	RejectedBy         *int64     `json:"rejected_by,omitempty"`
	RejectedByUsername string     `json:"rejected_by_username,omitempty"`
	RejectedAt         *time.Time `json:"rejected_at,omitempty"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`

	FinishedBy         *int64     `json:"finished_by,omitempty"`
	FinishedByUsername string     `json:"finished_by_username,omitempty"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`

	SignatureUser        string `json:"signature_user,omitempty"`
	SignatureManager     string `json:"signature_manager,omitempty"`
	SignatureAdminFinish string `json:"signature_admin_finish,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecomputeTotals rederives every item total, the grand total and its
// terbilang rendering. Both submit and edit-resubmit go through here so the
// derived fields can never drift from the items.
func (p *Pengajuan) RecomputeTotals() {
	var grand int64
	for i := range p.Items {
		p.Items[i].Total = p.Items[i].Jumlah * p.Items[i].Harga
		grand += p.Items[i].Total
	}
	p.GrandTotal = grand
	p.GrandTotalTerbilang = terbilang.Words(grand)
}

// ValidateItems checks the submit/resubmit item rules: at least one item,
// every item named, with positive quantity and price.
func ValidateItems(items []PengajuanItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: minimal satu barang", ErrValidation)
	}
	for i, item := range items {
		if strings.TrimSpace(item.NamaBarang) == "" {
			return fmt.Errorf("%w: nama barang ke-%d wajib diisi", ErrValidation, i+1)
		}
		if item.Jumlah <= 0 {
			return fmt.Errorf("%w: jumlah barang ke-%d harus > 0", ErrValidation, i+1)
		}
		if item.Harga <= 0 {
			return fmt.Errorf("%w: harga barang ke-%d harus > 0", ErrValidation, i+1)
		}
	}
	return nil
}

// Signature builds the "who signed, when" token stamped on transitions,
// e.g. "budi | 17/08/2025 09:41:03".
func Signature(username string, at time.Time) string {
	return fmt.Sprintf("%s | %s", username, at.Format("02/01/2006 15:04:05"))
}
