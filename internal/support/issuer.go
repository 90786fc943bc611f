package support

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"remote-support-backend/internal/code"
	"remote-support-backend/internal/model"
	"remote-support-backend/internal/store"
)

// maxIssueAttempts bounds the regenerate-on-collision loop. With a million
// possible codes and a handful active at a time, a second collision in a
// row already means something is wrong with the environment.
const maxIssueAttempts = 5

// CustomerInfo is the customer metadata bound to an issued code.
type CustomerInfo struct {
	Name  string
	Email string
	Phone string
	Notes string
}

// Issuer generates unique, time-limited support codes.
type Issuer struct {
	store    store.Store
	activity *ActivityLog
	ttl      time.Duration
}

// NewIssuer creates a code issuer with the given code TTL.
func NewIssuer(s store.Store, activity *ActivityLog, ttl time.Duration) *Issuer {
	return &Issuer{store: s, activity: activity, ttl: ttl}
}

// IssueCode generates a fresh support code for the customer. The insert is
// atomic against the active-code index, so concurrent technicians never
// end up with duplicate active codes; on a collision a new code is drawn.
func (i *Issuer) IssueCode(ctx context.Context, info CustomerInfo) (*model.SupportCode, error) {
	info.Name = strings.TrimSpace(info.Name)
	if info.Name == "" {
		return nil, validationErr("customer_name", "customer name is required")
	}
	if info.Email != "" && !strings.Contains(info.Email, "@") {
		return nil, validationErr("customer_email", "customer email is malformed")
	}

	now := time.Now().UTC()
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		digits, err := code.Generate()
		if err != nil {
			return nil, err
		}

		sc := &model.SupportCode{
			Code:          digits,
			CustomerName:  info.Name,
			CustomerEmail: info.Email,
			CustomerPhone: info.Phone,
			Notes:         info.Notes,
			Status:        model.CodeStatusIssued,
			CreatedAt:     now,
			ExpiresAt:     now.Add(i.ttl),
		}

		err = i.store.CreateCode(ctx, sc)
		if errors.Is(err, store.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		i.activity.Record(ctx, model.ActivityEvent{
			Type:        model.ActivityCodeGenerated,
			Title:       fmt.Sprintf("Support code generated for %s", info.Name),
			Description: "New support code created for customer assistance",
			Code:        sc.Code,
		})
		return sc, nil
	}

	return nil, fmt.Errorf("could not find a free support code after %d attempts", maxIssueAttempts)
}
