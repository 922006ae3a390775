package enums

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateFarmer OutboxAggregateType = "farmer"
	AggregateBuyer  OutboxAggregateType = "buyer"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateFarmer,
	AggregateBuyer,
}

// IsValid reports whether the value matches the canonical aggregate_type set.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// AggregateFor maps an owner kind onto the outbox aggregate it publishes under.
func AggregateFor(kind OwnerKind) OutboxAggregateType {
	if kind == OwnerBuyer {
		return AggregateBuyer
	}
	return AggregateFarmer
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventOrderCreated        OutboxEventType = "ledger.order.created"
	EventOrderUpdated        OutboxEventType = "ledger.order.updated"
	EventOrderDeleted        OutboxEventType = "ledger.order.deleted"
	EventSaleCreated         OutboxEventType = "ledger.sale.created"
	EventSaleUpdated         OutboxEventType = "ledger.sale.updated"
	EventSaleDeleted         OutboxEventType = "ledger.sale.deleted"
	EventAggregateReconciled OutboxEventType = "ledger.aggregate.reconciled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderUpdated,
	EventOrderDeleted,
	EventSaleCreated,
	EventSaleUpdated,
	EventSaleDeleted,
	EventAggregateReconciled,
}

// IsValid reports whether the value matches the canonical event_type set.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}
