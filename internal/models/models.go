package models

// UserRole identifies what a user may do on the marketplace
type UserRole string

const (
	RolePharmacy  UserRole = "PHARMACY"
	RoleWarehouse UserRole = "WAREHOUSE"
	RoleAdmin     UserRole = "ADMIN"
)

// RegistrationStatus is shared by users and registration requests
type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "PENDING"
	StatusApproved RegistrationStatus = "APPROVED"
	StatusRejected RegistrationStatus = "REJECTED"
)

// User represents an active marketplace account
type User struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Phone        string             `json:"phone"`
	PasswordHash string             `json:"passwordHash,omitempty"`
	Role         UserRole           `json:"role"`
	Status       RegistrationStatus `json:"status"`
}

// Public strips credentials before a user leaves the service layer
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// RegistrationRequest is a pending account-creation proposal
type RegistrationRequest struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Type          UserRole           `json:"type"`
	LicenseNumber string             `json:"licenseNumber"`
	Location      string             `json:"location"`
	RequestDate   string             `json:"requestDate"`
	Status        RegistrationStatus `json:"status"`
	ContactPhone  string             `json:"contactPhone"`
	PasswordHash  string             `json:"passwordHash,omitempty"`
}

// Public strips credentials before a request leaves the service layer
func (r RegistrationRequest) Public() RegistrationRequest {
	r.PasswordHash = ""
	return r
}

// Integration types of a warehouse price feed
const (
	IntegrationOrgaSoft = "ORGASOFT"
	IntegrationManual   = "MANUAL"
	IntegrationExcel    = "EXCEL"
	IntegrationPDF      = "PDF"
)

// Warehouse represents a drug supplier
type Warehouse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Rating          float64 `json:"rating"`
	LastUpdated     string  `json:"lastUpdated"`
	IntegrationType string  `json:"integrationType"`
}

// Stock statuses of an offer
const (
	StockAvailable  = "AVAILABLE"
	StockLow        = "LOW"
	StockOutOfStock = "OUT_OF_STOCK"
)

// DrugOffer is a warehouse's priced listing of a drug
type DrugOffer struct {
	WarehouseID string  `json:"warehouseId"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	Bonus       string  `json:"bonus"`
	StockStatus string  `json:"stockStatus"`
	LastUpdated string  `json:"lastUpdated"`
}

// Drug represents a catalog entry with offers from several warehouses
type Drug struct {
	ID             string      `json:"id"`
	TradeName      string      `json:"tradeName"`
	ScientificName string      `json:"scientificName"`
	Manufacturer   string      `json:"manufacturer"`
	Type           string      `json:"type"`
	Offers         []DrugOffer `json:"offers"`
}

// MarketItem is a surplus-stock listing posted by a pharmacy
type MarketItem struct {
	ID            string  `json:"id"`
	SellerName    string  `json:"sellerName"`
	TradeName     string  `json:"tradeName"`
	Quantity      int     `json:"quantity"`
	ExpiryDate    string  `json:"expiryDate"`
	OriginalPrice float64 `json:"originalPrice"`
	SellingPrice  float64 `json:"sellingPrice"`
	Description   string  `json:"description"`
	Location      string  `json:"location"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	PostedAt      string  `json:"postedAt"`
}

// Upload statuses
const (
	UploadProcessed  = "PROCESSED"
	UploadProcessing = "PROCESSING"
	UploadFailed     = "FAILED"
)

// UploadHistory records one price-list upload of a warehouse
type UploadHistory struct {
	ID         string `json:"id"`
	FileName   string `json:"fileName"`
	UploadTime string `json:"uploadTime"`
	Status     string `json:"status"`
	ItemsCount int    `json:"itemsCount"`
}

// DailyStatus tracks the morning/evening price-list submissions of a warehouse
type DailyStatus struct {
	Morning  bool   `json:"morning"`
	Evening  bool   `json:"evening"`
	LastSync string `json:"lastSync,omitempty"`
}

// CartItem is one (drug, warehouse) line of a pharmacy cart
type CartItem struct {
	ID            string  `json:"id"`
	DrugID        string  `json:"drugId"`
	TradeName     string  `json:"tradeName"`
	WarehouseID   string  `json:"warehouseId"`
	WarehouseName string  `json:"warehouseName"`
	Price         float64 `json:"price"`
	Discount      float64 `json:"discount"`
	Quantity      int     `json:"quantity"`
	Bonus         string  `json:"bonus"`
}

// Order statuses
const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// OrderItem represents one line of a submitted order
type OrderItem struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

// Order represents a pharmacy order sent to one warehouse
type Order struct {
	ID               string      `json:"id"`
	PharmacyID       string      `json:"pharmacyId"`
	PharmacyName     string      `json:"pharmacyName"`
	WarehouseID      string      `json:"warehouseId,omitempty"`
	ItemsCount       int         `json:"itemsCount"`
	TotalAmount      float64     `json:"totalAmount"`
	Status           string      `json:"status"`
	OrderDate        string      `json:"orderDate"`
	Details          []OrderItem `json:"details"`
	InvoiceRequested bool        `json:"invoiceRequested"`
}

// OfferRecord is one structured row extracted from a price list
type OfferRecord struct {
	TradeName string   `json:"tradeName"`
	Discount  float64  `json:"discount"`
	Price     *float64 `json:"price,omitempty"`
	Bonus     *string  `json:"bonus,omitempty"`
}
