package outbox

import "github.com/shopspring/decimal"

// LedgerChanged is the data of every ledger.* event: the line item touched and
// the owner aggregate as it stands after the write committed.
type LedgerChanged struct {
	OwnerKind   string          `json:"owner_kind"`
	OwnerID     string          `json:"owner_id"`
	LineKind    string          `json:"line_kind,omitempty"`
	LineID      string          `json:"line_id,omitempty"`
	TotalFruits int64           `json:"total_fruits"`
	TotalMoney  decimal.Decimal `json:"total_money"`
	Drifted     bool            `json:"drifted,omitempty"`
}
