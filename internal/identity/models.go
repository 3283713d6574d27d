package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"surety/pkg/domain"
	dErrors "surety/pkg/domain-errors"
)

// IDType is a supported national identifier scheme.
type IDType string

const (
	IDTypeBVN IDType = "BVN"
	IDTypeNIN IDType = "NIN"
)

// IdentifierLength is the fixed length of both BVN and NIN.
const IdentifierLength = 11

func ParseIDType(s string) (IDType, error) {
	switch t := IDType(strings.ToUpper(strings.TrimSpace(s))); t {
	case IDTypeBVN, IDTypeNIN:
		return t, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidIdentifier, "id type must be BVN or NIN")
}

// Status is the review state of a submission.
type Status string

const (
	StatusNotSubmitted Status = "not_submitted"
	StatusPending      Status = "pending"
	StatusVerified     Status = "verified"
	StatusRejected     Status = "rejected"
)

// IsTerminal reports whether an oracle has already decided the submission.
func (s Status) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// Submission is the persisted record. It holds the fingerprint only.
type Submission struct {
	Wallet            domain.WalletAddress `json:"wallet_address"`
	IDType            IDType               `json:"id_type"`
	IDHash            string               `json:"id_hash"`
	ExternalContentID string               `json:"external_content_id,omitempty"`
	Status            Status               `json:"status"`
	SubmittedAt       time.Time            `json:"submitted_at"`
	ReviewedAt        *time.Time           `json:"reviewed_at,omitempty"`
}

// View is what callers see for a wallet, including wallets with no submission.
type View struct {
	Wallet      domain.WalletAddress `json:"wallet_address"`
	Status      Status               `json:"status"`
	IDType      IDType               `json:"id_type,omitempty"`
	IDHash      string               `json:"id_hash,omitempty"`
	ContentID   string               `json:"content_id,omitempty"`
	SubmittedAt *time.Time           `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time           `json:"reviewed_at,omitempty"`
}

func (s *Submission) View() View {
	submitted := s.SubmittedAt
	return View{
		Wallet:      s.Wallet,
		Status:      s.Status,
		IDType:      s.IDType,
		IDHash:      s.IDHash,
		ContentID:   s.ExternalContentID,
		SubmittedAt: &submitted,
		ReviewedAt:  s.ReviewedAt,
	}
}

// Result is returned from Submit.
type Result struct {
	Status    Status `json:"status"`
	IDHash    string `json:"id_hash"`
	ContentID string `json:"content_id,omitempty"`
}

func (s *Submission) Result() *Result {
	return &Result{Status: s.Status, IDHash: s.IDHash, ContentID: s.ExternalContentID}
}

// Draft is a prepared submission together with the record it replaces, so a
// committed draft can be rolled back.
type Draft struct {
	Submission *Submission
	previous   *Submission
}

// PublicRecord is the anonymized record sent to the content store.
type PublicRecord struct {
	Wallet    domain.WalletAddress `json:"walletAddress"`
	IDType    IDType               `json:"idType"`
	IDHash    string               `json:"idHash"`
	Timestamp time.Time            `json:"timestamp"`
}

// ValidateIdentifier checks for exactly eleven ASCII digits.
func ValidateIdentifier(raw string) error {
	if len(raw) != IdentifierLength {
		return dErrors.New(dErrors.CodeInvalidIdentifier, "identifier must be exactly 11 digits")
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return dErrors.New(dErrors.CodeInvalidIdentifier, "identifier must contain digits only")
		}
	}
	return nil
}

// Fingerprint is hex(SHA-256(wallet ":" idType ":" rawID)).
func Fingerprint(wallet domain.WalletAddress, idType IDType, rawID string) string {
	sum := sha256.Sum256([]byte(string(wallet) + ":" + string(idType) + ":" + rawID))
	return hex.EncodeToString(sum[:])
}
