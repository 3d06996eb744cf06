package enums

import "fmt"

// LedgerEntryType maps to the ledger_entry_type enum in Postgres.
type LedgerEntryType string

const (
	LedgerEntryTypeOrderPayment   LedgerEntryType = "order_payment"
	LedgerEntryTypeRefund         LedgerEntryType = "refund"
	LedgerEntryTypeWalletTopup    LedgerEntryType = "wallet_topup"
	LedgerEntryTypePaymentAttempt LedgerEntryType = "payment_attempt"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryTypeOrderPayment,
	LedgerEntryTypeRefund,
	LedgerEntryTypeWalletTopup,
	LedgerEntryTypePaymentAttempt,
}

// MovesBalance reports whether entries of this type change the wallet
// balance. Payment attempts are informational: money is owed to the gateway
// or the courier, not moved in the wallet, so replay treats them as zero.
func (t LedgerEntryType) MovesBalance() bool {
	return t != LedgerEntryTypePaymentAttempt
}

// IsCredit reports whether entries of this type add money to the wallet.
func (t LedgerEntryType) IsCredit() bool {
	return t == LedgerEntryTypeRefund || t == LedgerEntryTypeWalletTopup
}

// String implements fmt.Stringer.
func (t LedgerEntryType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical ledger entry enum.
func (t LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEntryType converts raw input into LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
