package query

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tells Compare how to order two values.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
)

// Value is a sortable cell extracted from a row.
type Value struct {
	kind Kind
	str  string
	num  decimal.Decimal
	at   time.Time
}

func String(s string) Value           { return Value{kind: KindString, str: s} }
func Int(n int64) Value               { return Value{kind: KindNumber, num: decimal.NewFromInt(n)} }
func Decimal(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }
func Time(t time.Time) Value          { return Value{kind: KindTime, at: t} }
func (v Value) Kind() Kind            { return v.kind }

// Compare orders strings byte-wise (case-sensitive), numbers numerically and
// times chronologically. Values of different kinds compare by kind.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNumber:
		return a.num.Cmp(b.num)
	case KindTime:
		return a.at.Compare(b.at)
	default:
		return strings.Compare(a.str, b.str)
	}
}
