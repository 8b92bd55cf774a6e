package models

import "time"

// Event types
const (
	EventTypeRegistrationSubmitted = "REGISTRATION_SUBMITTED"
	EventTypeRegistrationDecided   = "REGISTRATION_DECIDED"
	EventTypeUserDeleted           = "USER_DELETED"
	EventTypePriceListIngested     = "PRICE_LIST_INGESTED"
	EventTypePriceListPublished    = "PRICE_LIST_PUBLISHED"
	EventTypeOrderSubmitted        = "ORDER_SUBMITTED"
	EventTypeInvoiceRequested      = "INVOICE_REQUESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// RegistrationSubmittedEvent published when a pharmacy or warehouse applies
type RegistrationSubmittedEvent struct {
	BaseEvent
	RequestID string   `json:"request_id"`
	Type      UserRole `json:"type"`
}

// RegistrationDecidedEvent published when the admin approves or rejects a request
type RegistrationDecidedEvent struct {
	BaseEvent
	RequestID string             `json:"request_id"`
	Decision  RegistrationStatus `json:"decision"`
}

// UserDeletedEvent published when the admin removes an account
type UserDeletedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
}

// PriceListIngestedEvent published after a document was parsed
type PriceListIngestedEvent struct {
	BaseEvent
	WarehouseID string `json:"warehouse_id"`
	FileName    string `json:"file_name"`
	ItemsCount  int    `json:"items_count"`
}

// PriceListPublishedEvent carries records a warehouse confirmed for the catalog
type PriceListPublishedEvent struct {
	BaseEvent
	WarehouseID string        `json:"warehouse_id"`
	Records     []OfferRecord `json:"records"`
}

// OrderSubmittedEvent published when a pharmacy sends its cart to a warehouse
type OrderSubmittedEvent struct {
	BaseEvent
	OrderID     string  `json:"order_id"`
	PharmacyID  string  `json:"pharmacy_id"`
	WarehouseID string  `json:"warehouse_id"`
	TotalAmount float64 `json:"total_amount"`
}

// InvoiceRequestedEvent published when a pharmacy asks for an invoice
type InvoiceRequestedEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	PharmacyID string `json:"pharmacy_id"`
}
