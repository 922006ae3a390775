package models

// All lists every persisted model, in dependency order, for sqlite auto-migration.
func All() []any {
	return []any{
		&Farmer{},
		&Buyer{},
		&Order{},
		&Sale{},
		&OutboxEvent{},
		&OutboxDLQ{},
		&DriftReport{},
	}
}
