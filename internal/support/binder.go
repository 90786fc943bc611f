package support

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"remote-support-backend/internal/code"
	"remote-support-backend/internal/model"
	"remote-support-backend/internal/store"
)

// InstallerDescriptor describes the device-bound installer artifact handed
// to the customer after a successful redemption. The download itself is
// served by the web tier; the descriptor carries everything to embed in
// the generated package.
type InstallerDescriptor struct {
	DownloadURL   string `json:"download_url"`
	PackageName   string `json:"package_name"`
	DeviceID      string `json:"device_id"`
	CustomerName  string `json:"customer_name"`
	ServerAddress string `json:"server_address"`
}

// Binder exchanges a valid support code for a device-bound installer,
// exactly once per code.
type Binder struct {
	store         store.Store
	activity      *ActivityLog
	serverAddress string
}

// NewBinder creates an installer binder.
func NewBinder(s store.Store, activity *ActivityLog, serverAddress string) *Binder {
	return &Binder{store: s, activity: activity, serverAddress: serverAddress}
}

// RedeemCode validates and consumes a support code, creating the device it
// binds. Under concurrent redemption of one code exactly one caller
// receives a descriptor; the rest see the already-redeemed failure.
func (b *Binder) RedeemCode(ctx context.Context, submitted string) (*InstallerDescriptor, error) {
	submitted = strings.TrimSpace(submitted)
	if err := code.Validate(submitted); err != nil {
		return nil, validationErr("support_code", err.Error())
	}

	dev := &model.Device{ID: uuid.NewString()}
	sc, err := b.store.RedeemCode(ctx, submitted, time.Now().UTC(), dev)
	if err != nil {
		return nil, err
	}

	b.activity.Record(ctx, model.ActivityEvent{
		Type:        model.ActivityDeviceRegistered,
		Title:       fmt.Sprintf("Device registered for %s", sc.CustomerName),
		Description: fmt.Sprintf("Support code %s redeemed and installer issued", sc.Code),
		DeviceID:    dev.ID,
		Code:        sc.Code,
	})

	pkg := packageName(sc.Code, sc.CustomerName)
	return &InstallerDescriptor{
		DownloadURL:   "/downloads/" + pkg,
		PackageName:   pkg,
		DeviceID:      dev.ID,
		CustomerName:  sc.CustomerName,
		ServerAddress: b.serverAddress,
	}, nil
}

// packageName derives the installer artifact name from the code and the
// customer, stripping whitespace from the name.
func packageName(codeValue, customerName string) string {
	compact := strings.Join(strings.Fields(customerName), "")
	if compact == "" {
		compact = "Customer"
	}
	return fmt.Sprintf("SupportClient-%s-%s.zip", codeValue, compact)
}
