package pgsql

import (
	"time"

	"github.com/SscSPs/shared_ledger_app/internal/core/domain"
	"github.com/SscSPs/shared_ledger_app/internal/models"
)

func toModelShares(m domain.ShareMap) map[int64]float64 {
	if m == nil {
		return nil
	}
	out := make(map[int64]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toDomainShares(m map[int64]float64) domain.ShareMap {
	if m == nil {
		return nil
	}
	out := make(domain.ShareMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toModelAccountDetails(d domain.AccountDetails) models.AccountDetails {
	return models.AccountDetails{
		Name:           d.Name,
		Description:    d.Description,
		DateInfo:       d.DateInfo,
		Tags:           d.Tags,
		ClearingShares: toModelShares(d.ClearingShares),
		Deleted:        d.Deleted,
	}
}

func toDomainAccountDetails(m models.AccountDetails) domain.AccountDetails {
	var dateInfo *time.Time
	if m.DateInfo != nil {
		utc := m.DateInfo.UTC()
		dateInfo = &utc
	}
	return domain.AccountDetails{
		Name:           m.Name,
		Description:    m.Description,
		DateInfo:       dateInfo,
		Tags:           m.Tags,
		ClearingShares: toDomainShares(m.ClearingShares),
		Deleted:        m.Deleted,
	}
}

func toModelTransactionDetails(d domain.TransactionDetails) models.TransactionDetails {
	var positions []models.Position
	if d.Positions != nil {
		positions = make([]models.Position, len(d.Positions))
		for i, p := range d.Positions {
			positions[i] = models.Position{
				Name:            p.Name,
				Price:           p.Price,
				CommunistShares: p.CommunistShares,
				Usages:          toModelShares(p.Usages),
				Deleted:         p.Deleted,
			}
		}
	}
	return models.TransactionDetails{
		Name:           d.Name,
		Description:    d.Description,
		Value:          d.Value,
		CurrencySymbol: d.CurrencySymbol,
		ConversionRate: d.ConversionRate,
		BilledAt:       d.BilledAt,
		Tags:           d.Tags,
		DebitorShares:  toModelShares(d.DebitorShares),
		CreditorShares: toModelShares(d.CreditorShares),
		Positions:      positions,
		Deleted:        d.Deleted,
	}
}

func toDomainTransactionDetails(m models.TransactionDetails) domain.TransactionDetails {
	var positions []domain.Position
	if m.Positions != nil {
		positions = make([]domain.Position, len(m.Positions))
		for i, p := range m.Positions {
			positions[i] = domain.Position{
				Name:            p.Name,
				Price:           p.Price,
				CommunistShares: p.CommunistShares,
				Usages:          toDomainShares(p.Usages),
				Deleted:         p.Deleted,
			}
		}
	}
	return domain.TransactionDetails{
		Name:           m.Name,
		Description:    m.Description,
		Value:          m.Value,
		CurrencySymbol: m.CurrencySymbol,
		ConversionRate: m.ConversionRate,
		BilledAt:       m.BilledAt.UTC(),
		Tags:           m.Tags,
		DebitorShares:  toDomainShares(m.DebitorShares),
		CreditorShares: toDomainShares(m.CreditorShares),
		Positions:      positions,
		Deleted:        m.Deleted,
	}
}

func toDomainGroup(m models.Group) domain.Group {
	return domain.Group{
		GroupID:        m.ID,
		Name:           m.Name,
		Description:    m.Description,
		CurrencySymbol: m.CurrencySymbol,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toDomainMembership(m models.GroupMembership) domain.GroupMembership {
	return domain.GroupMembership{
		UserID:   m.UserID,
		GroupID:  m.GroupID,
		Role:     domain.GroupRole(m.Role),
		JoinedAt: m.JoinedAt,
	}
}

func toModelFileDetails(fileID int64, slot models.FileSlot, d *domain.FileDetails) models.FileDetails {
	return models.FileDetails{
		FileID:    fileID,
		Slot:      slot,
		Filename:  d.Filename,
		BlobID:    d.BlobID,
		Deleted:   d.Deleted,
		UserID:    d.UserID,
		ChangedAt: d.ChangedAt,
	}
}

func toDomainFileDetails(m models.FileDetails) *domain.FileDetails {
	return &domain.FileDetails{
		Filename:  m.Filename,
		BlobID:    m.BlobID,
		Deleted:   m.Deleted,
		UserID:    m.UserID,
		ChangedAt: m.ChangedAt,
	}
}

func toDomainBlob(m models.Blob) *domain.Blob {
	return &domain.Blob{
		BlobID:   m.ID,
		Hash:     m.ContentHash,
		MimeType: m.MimeType,
		Size:     m.Size,
		Content:  m.Content,
	}
}
