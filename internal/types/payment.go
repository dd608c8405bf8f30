package types

import (
	"fmt"

	"github.com/samber/lo"
)

// PaymentStatus represents the status of an executed payment transaction
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusCompleted,
		PaymentStatusFailed,
		PaymentStatusRefunded,
	}
	if !lo.Contains(allowed, s) {
		return fmt.Errorf("invalid payment status: %s", s)
	}
	return nil
}

// PaymentMethodType represents how a payment was made
type PaymentMethodType string

const (
	PaymentMethodTypeCard         PaymentMethodType = "card"
	PaymentMethodTypeBankTransfer PaymentMethodType = "bank_transfer"
	PaymentMethodTypeCash         PaymentMethodType = "cash"
	PaymentMethodTypeOffline      PaymentMethodType = "offline"
)

func (t PaymentMethodType) String() string {
	return string(t)
}

func (t PaymentMethodType) Validate() error {
	allowed := []PaymentMethodType{
		PaymentMethodTypeCard,
		PaymentMethodTypeBankTransfer,
		PaymentMethodTypeCash,
		PaymentMethodTypeOffline,
	}
	if !lo.Contains(allowed, t) {
		return fmt.Errorf("invalid payment method type: %s", t)
	}
	return nil
}
