package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"remote-support-backend/internal/model"
)

// CreateCode inserts a freshly issued support code. When the generated
// digits collide with a currently issued code, the active-code index
// rejects the insert and ErrCodeTaken is returned; the issuer regenerates
// and retries. The uniqueness check and the insert are a single atomic
// operation, so concurrent technicians can never issue duplicate active
// codes.
func (s *gormStore) CreateCode(ctx context.Context, sc *model.SupportCode) error {
	if err := s.db.WithContext(ctx).Create(sc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCodeTaken
		}
		return fmt.Errorf("failed to create support code: %w", err)
	}
	return nil
}

// RedeemCode transitions a code from issued to redeemed and creates the
// device bound to it, atomically. Under concurrent redemption of the same
// code exactly one caller wins; the rest get ErrCodeRedeemed. An issued
// code past its expiry is marked expired and reported as ErrCodeExpired.
func (s *gormStore) RedeemCode(ctx context.Context, codeValue string, now time.Time, dev *model.Device) (*model.SupportCode, error) {
	// Expire a lapsed issued row before the redemption transaction. The
	// mark must not share a transaction with the error return, or the
	// rollback would undo it.
	res := s.db.WithContext(ctx).Model(&model.SupportCode{}).
		Where("code = ? AND status = ? AND expires_at <= ?",
			codeValue, model.CodeStatusIssued, now).
		Update("status", model.CodeStatusExpired)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to expire support code %s: %w", codeValue, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil, ErrCodeExpired
	}

	var redeemed model.SupportCode

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sc model.SupportCode
		err := tx.Where("code = ? AND status = ?", codeValue, model.CodeStatusIssued).
			First(&sc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return classifyInactiveCode(tx, codeValue)
		}
		if err != nil {
			return fmt.Errorf("failed to look up support code %s: %w", codeValue, err)
		}

		res := tx.Model(&model.SupportCode{}).
			Where("id = ? AND status = ?", sc.ID, model.CodeStatusIssued).
			Update("status", model.CodeStatusRedeemed)
		if res.Error != nil {
			return fmt.Errorf("failed to redeem support code %s: %w", codeValue, res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race: another redemption won between lookup and update.
			return ErrCodeRedeemed
		}

		dev.CustomerName = sc.CustomerName
		dev.BoundCode = sc.Code
		dev.Status = model.DeviceStatusRegistered
		dev.LastSeen = now
		dev.CreatedAt = now
		if err := tx.Create(dev).Error; err != nil {
			return fmt.Errorf("failed to create device for code %s: %w", codeValue, err)
		}

		sc.Status = model.CodeStatusRedeemed
		redeemed = sc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &redeemed, nil
}

// classifyInactiveCode decides which error to report when no issued row
// exists for the submitted digits: the most recent redeemed or expired row
// wins, otherwise the code was never issued.
func classifyInactiveCode(tx *gorm.DB, codeValue string) error {
	var prior model.SupportCode
	err := tx.Where("code = ?", codeValue).
		Order("created_at DESC").
		First(&prior).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up support code %s: %w", codeValue, err)
	}

	switch prior.Status {
	case model.CodeStatusRedeemed:
		return ErrCodeRedeemed
	case model.CodeStatusExpired:
		return ErrCodeExpired
	default:
		return ErrCodeNotFound
	}
}

// SweepCodes expires every issued code whose TTL has lapsed and returns the
// affected rows so the sweeper can log them. Expiry is a normal lifecycle
// transition, not an error.
func (s *gormStore) SweepCodes(ctx context.Context, now time.Time) ([]model.SupportCode, error) {
	var lapsed []model.SupportCode

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ? AND expires_at <= ?", model.CodeStatusIssued, now).
			Find(&lapsed).Error; err != nil {
			return fmt.Errorf("failed to find lapsed codes: %w", err)
		}
		if len(lapsed) == 0 {
			return nil
		}

		ids := make([]int64, len(lapsed))
		for i, sc := range lapsed {
			ids[i] = sc.ID
		}
		if err := tx.Model(&model.SupportCode{}).
			Where("id IN ? AND status = ?", ids, model.CodeStatusIssued).
			Update("status", model.CodeStatusExpired).Error; err != nil {
			return fmt.Errorf("failed to expire lapsed codes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range lapsed {
		lapsed[i].Status = model.CodeStatusExpired
	}
	return lapsed, nil
}
