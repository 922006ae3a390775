package enums

// DriftCheckType identifies which stored aggregate a drift report refers to.
type DriftCheckType string

const (
	DriftCheckFruits DriftCheckType = "total_fruits"
	DriftCheckMoney  DriftCheckType = "total_money"
)
