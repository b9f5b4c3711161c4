// Package ledger implements the business operations of the exchange ledger:
// partner management, transaction recording and aggregation. Every service
// takes its store dependencies explicitly; there is no ambient global handle.
package ledger

import (
	"log/slog"
	"strings"
	"time"

	"github.com/jkimaro/fx-ledger/pkg/db"
	"github.com/jkimaro/fx-ledger/pkg/model"
)

// Partner name length bounds, applied after trimming.
const (
	minPartnerNameLen = 2
	maxPartnerNameLen = 50
)

// PartnerService manages partner lifecycle and name validation.
type PartnerService struct {
	partners *db.PartnerRepository
	txns     *db.TransactionRepository
	log      *slog.Logger
}

// NewPartnerService creates a new PartnerService.
func NewPartnerService(partners *db.PartnerRepository, txns *db.TransactionRepository, log *slog.Logger) *PartnerService {
	if log == nil {
		log = slog.Default()
	}
	return &PartnerService{partners: partners, txns: txns, log: log}
}

// AddPartner validates and creates a new active partner.
func (s *PartnerService) AddPartner(name, notes string) (*model.Partner, error) {
	name = strings.TrimSpace(name)
	if err := s.validateName(name, 0); err != nil {
		return nil, err
	}

	p := model.Partner{
		Name:      name,
		CreatedAt: time.Now(),
		State:     model.PartnerActive,
		Notes:     notes,
	}

	id, err := s.partners.Create(p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	s.log.Info("partner added", "id", id, "name", name)
	return &p, nil
}

// UpdatePartner validates and persists a partner's mutable fields.
func (s *PartnerService) UpdatePartner(p model.Partner) error {
	existing, err := s.partners.Get(p.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return &NotFoundError{Entity: "partner", ID: p.ID}
	}

	p.Name = strings.TrimSpace(p.Name)
	if err := s.validateName(p.Name, p.ID); err != nil {
		return err
	}

	return s.partners.Update(p)
}

// RenamePartner changes a partner's name, enforcing the uniqueness rules.
func (s *PartnerService) RenamePartner(id int64, newName string) error {
	existing, err := s.partners.Get(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return &NotFoundError{Entity: "partner", ID: id}
	}

	existing.Name = strings.TrimSpace(newName)
	if err := s.validateName(existing.Name, id); err != nil {
		return err
	}

	return s.partners.Update(*existing)
}

// DeletePartner soft-deletes a partner. Its transactions stay in place and
// its name becomes available to new partners.
func (s *PartnerService) DeletePartner(id int64) error {
	existing, err := s.partners.Get(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return &NotFoundError{Entity: "partner", ID: id}
	}

	if err := s.partners.SetActive(id, false); err != nil {
		return err
	}

	s.log.Info("partner deleted", "id", id, "name", existing.Name)
	return nil
}

// PurgePartner permanently removes a partner and all of its transactions.
// The cascade is explicit: transactions go first, then the partner row.
func (s *PartnerService) PurgePartner(id int64) error {
	existing, err := s.partners.Get(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return &NotFoundError{Entity: "partner", ID: id}
	}

	removed, err := s.txns.DeleteByPartner(id)
	if err != nil {
		return err
	}

	if _, err := s.partners.Delete(id); err != nil {
		return err
	}

	s.log.Info("partner purged", "id", id, "name", existing.Name, "transactions_removed", removed)
	return nil
}

// IsNameTaken reports whether an active partner other than excludeID already
// uses the name under normalization. excludeID 0 excludes nobody.
func (s *PartnerService) IsNameTaken(name string, excludeID int64) (bool, error) {
	partners, err := s.partners.ListActive()
	if err != nil {
		return false, err
	}

	want := model.NormalizeName(name)
	for _, p := range partners {
		if p.ID == excludeID {
			continue
		}
		if model.NormalizeName(p.Name) == want {
			return true, nil
		}
	}

	return false, nil
}

// validateName enforces the partner naming rules: non-empty after trimming,
// length within bounds, and no collision with another active partner.
func (s *PartnerService) validateName(trimmed string, excludeID int64) error {
	if trimmed == "" {
		return validationf("partner name must not be empty")
	}
	if len(trimmed) < minPartnerNameLen || len(trimmed) > maxPartnerNameLen {
		return validationf("partner name must be between %d and %d characters", minPartnerNameLen, maxPartnerNameLen)
	}

	taken, err := s.IsNameTaken(trimmed, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return validationf("partner name %q is already in use", trimmed)
	}

	return nil
}
