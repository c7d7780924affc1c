package model

// All lists every table owned by the billing service, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Salon{},
		&Subscription{},
		&SubscriptionCancellation{},
		&Invoice{},
		&InvoiceSequence{},
		&WebhookEvent{},
	}
}
