package domain

import (
	"time"
)

// Transaction types accepted by the pipeline.
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxTransfer   = "transfer"
)

// ValidTransactionType reports whether t is one of the accepted types.
func ValidTransactionType(t string) bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxTransfer:
		return true
	}
	return false
}

// Transaction is an incoming transaction to be scored. Shipping, billing,
// payment and item fields are carried through the pipeline untouched; the
// scoring core only reads id_user, amount, transaction_type and timestamp,
// but standard rules may address any field by wire name.
type Transaction struct {
	IDTransaction   string    `json:"id_transaction" bson:"id_transaction"`
	IDUser          string    `json:"id_user" bson:"id_user"`
	Amount          float64   `json:"amount" bson:"amount"`
	TransactionType string    `json:"transaction_type" bson:"transaction_type"`
	Timestamp       time.Time `json:"timestamp" bson:"timestamp"`

	ListOfItems []map[string]any `json:"list_of_items,omitempty" bson:"list_of_items,omitempty"`

	ShipZip           string `json:"shipzip,omitempty" bson:"shipzip,omitempty"`
	ShippingAddress   string `json:"shipping_address,omitempty" bson:"shipping_address,omitempty"`
	ShippingCity      string `json:"shipping_city,omitempty" bson:"shipping_city,omitempty"`
	ShippingProvince  string `json:"shipping_province,omitempty" bson:"shipping_province,omitempty"`
	ShippingKecamatan string `json:"shipping_kecamatan,omitempty" bson:"shipping_kecamatan,omitempty"`

	BillingAddress   string `json:"billing_address,omitempty" bson:"billing_address,omitempty"`
	BillingCity      string `json:"billing_city,omitempty" bson:"billing_city,omitempty"`
	BillingProvince  string `json:"billing_province,omitempty" bson:"billing_province,omitempty"`
	BillingKecamatan string `json:"billing_kecamatan,omitempty" bson:"billing_kecamatan,omitempty"`

	PaymentType string `json:"payment_type,omitempty" bson:"payment_type,omitempty"`
	Number      string `json:"number,omitempty" bson:"number,omitempty"`
	BankName    string `json:"bank_name,omitempty" bson:"bank_name,omitempty"`
	Status      string `json:"status,omitempty" bson:"status,omitempty"`
}

// Doc flattens the transaction into a field-name addressable document for
// rule evaluation.
func (t *Transaction) Doc() map[string]any {
	return toDoc(t)
}

// Validate checks the schema/range constraints enforced at the API edge.
func (t *Transaction) Validate() error {
	if t.IDTransaction == "" {
		return BadRequestf("id_transaction is required")
	}
	if t.IDUser == "" {
		return BadRequestf("id_user is required")
	}
	if t.Amount <= 0 {
		return Validationf("amount must be positive")
	}
	if !ValidTransactionType(t.TransactionType) {
		return Validationf("transaction_type must be one of deposit, withdrawal, transfer")
	}
	return nil
}
