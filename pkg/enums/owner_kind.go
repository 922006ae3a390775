package enums

import "fmt"

// OwnerKind names the side of the ledger a line item rolls up into.
type OwnerKind string

const (
	OwnerFarmer OwnerKind = "farmer"
	OwnerBuyer  OwnerKind = "buyer"
)

func (k OwnerKind) IsValid() bool {
	return k == OwnerFarmer || k == OwnerBuyer
}

func ParseOwnerKind(value string) (OwnerKind, error) {
	switch OwnerKind(value) {
	case OwnerFarmer, OwnerBuyer:
		return OwnerKind(value), nil
	}
	return "", fmt.Errorf("invalid owner kind %q", value)
}
