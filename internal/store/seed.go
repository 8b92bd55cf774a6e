package store

import (
	"context"
	"fmt"

	"pharma-market/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	user     models.User
	password string
}

type seedRequest struct {
	request  models.RegistrationRequest
	password string
}

var seedUsers = []seedUser{
	{models.User{ID: "admin_1", Name: "System Administrator", Phone: "01000000000", Role: models.RoleAdmin, Status: models.StatusApproved}, "admin123"},
	{models.User{ID: "user_pharma_1", Name: "Al Hayat Pharmacy", Phone: "01234567890", Role: models.RolePharmacy, Status: models.StatusApproved}, "123456"},
	{models.User{ID: "w1", Name: "United Pharma Stores", Phone: "01111111111", Role: models.RoleWarehouse, Status: models.StatusApproved}, "123456"},
}

var seedRequests = []seedRequest{
	{models.RegistrationRequest{ID: "req_1", Name: "Al Mostaqbal Pharmacy", Type: models.RolePharmacy, LicenseNumber: "123456", Location: "Giza - Dokki", RequestDate: "2023-10-25", Status: models.StatusPending, ContactPhone: "01010101010"}, "password123"},
	{models.RegistrationRequest{ID: "req_2", Name: "Al Amal Stores", Type: models.RoleWarehouse, LicenseNumber: "654321", Location: "Cairo - Nasr City", RequestDate: "2023-10-24", Status: models.StatusPending, ContactPhone: "01122334455"}, "password123"},
	{models.RegistrationRequest{ID: "req_3", Name: "Al Shaab Pharmacy", Type: models.RolePharmacy, LicenseNumber: "987654", Location: "Alexandria", RequestDate: "2023-10-20", Status: models.StatusApproved, ContactPhone: "01222222222"}, "password123"},
	{models.RegistrationRequest{ID: "req_4", Name: "Al Shorouk Store", Type: models.RoleWarehouse, LicenseNumber: "456789", Location: "Mansoura", RequestDate: "2023-10-18", Status: models.StatusRejected, ContactPhone: "01555555555"}, "password123"},
}

// SeedWarehouses are the fixture suppliers
var SeedWarehouses = []models.Warehouse{
	{ID: "w_raya", Name: "Al Raya Pharm", Rating: 4.9, LastUpdated: "14:42", IntegrationType: models.IntegrationPDF},
	{ID: "w1", Name: "United Pharma Stores", Rating: 4.8, LastUpdated: "10:30", IntegrationType: models.IntegrationOrgaSoft},
	{ID: "w2", Name: "Al Shifa Store", Rating: 4.2, LastUpdated: "09:15", IntegrationType: models.IntegrationExcel},
	{ID: "w3", Name: "Pharma Misr Group", Rating: 4.5, LastUpdated: "10:55", IntegrationType: models.IntegrationOrgaSoft},
}

func offer(warehouseID string, price, discount float64, stock, updated string) models.DrugOffer {
	return models.DrugOffer{WarehouseID: warehouseID, Price: price, Discount: discount, StockStatus: stock, LastUpdated: updated}
}

// SeedDrugs is the fixture catalog
var SeedDrugs = []models.Drug{
	{ID: "d_atrovent", TradeName: "Atrovent 500mcg 20 vials", ScientificName: "Ipratropium Bromide", Manufacturer: "Boehringer", Type: "Inhalation",
		Offers: []models.DrugOffer{offer("w_raya", 286, 10, models.StockAvailable, "14:42"), offer("w1", 286, 8, models.StockAvailable, "10:30")}},
	{ID: "d_augmentin_1g", TradeName: "Augmentin 1g tablets", ScientificName: "Amoxicillin + Clavulanic Acid", Manufacturer: "GSK", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 210, 25, models.StockAvailable, "14:42"), offer("w1", 210, 20, models.StockLow, "10:30")}},
	{ID: "d_augmentin_625", TradeName: "Augmentin 625mg tablets", ScientificName: "Amoxicillin + Clavulanic Acid", Manufacturer: "GSK", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 117, 29, models.StockAvailable, "14:42")}},
	{ID: "d_ator_10", TradeName: "Ator 10mg", ScientificName: "Atorvastatin", Manufacturer: "EIPICO", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 45, 33, models.StockAvailable, "14:42")}},
	{ID: "d_ator_20", TradeName: "Ator 20mg", ScientificName: "Atorvastatin", Manufacturer: "EIPICO", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 79, 32, models.StockAvailable, "14:42")}},
	{ID: "d_epimol_500", TradeName: "Epimol 500mg", ScientificName: "Paracetamol", Manufacturer: "Glaxo", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 33, 24, models.StockAvailable, "14:42")}},
	{ID: "d_adol_500", TradeName: "Adol 500mg", ScientificName: "Paracetamol", Manufacturer: "Jubilant", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 34, 32, models.StockAvailable, "14:42")}},
	{ID: "d_alphintern", TradeName: "Alphintern 30 tablets", ScientificName: "Trypsin + Chymotrypsin", Manufacturer: "Amoun", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 87, 30, models.StockAvailable, "14:42"), offer("w2", 87, 28, models.StockAvailable, "09:15")}},
	{ID: "d_amaryl_1", TradeName: "Amaryl 1mg", ScientificName: "Glimepiride", Manufacturer: "Sanofi", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 40, 27, models.StockAvailable, "14:42")}},
	{ID: "d_panadol_adv", TradeName: "Panadol Advance", ScientificName: "Paracetamol", Manufacturer: "GSK", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 54, 18, models.StockAvailable, "14:42"), offer("w3", 54, 18, models.StockLow, "10:55")}},
	{ID: "d_panadol_extra", TradeName: "Panadol Extra", ScientificName: "Paracetamol + Caffeine", Manufacturer: "GSK", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 108, 15, models.StockAvailable, "14:42"), offer("w1", 108, 17, models.StockAvailable, "10:30"), offer("w2", 108, 12, models.StockOutOfStock, "09:15")}},
	{ID: "d_brufen_400", TradeName: "Brufen 400mg", ScientificName: "Ibuprofen", Manufacturer: "Abbott", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 48, 25, models.StockAvailable, "14:42")}},
	{ID: "d_telfast_120", TradeName: "Telfast 120mg", ScientificName: "Fexofenadine", Manufacturer: "Sanofi", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 66, 22, models.StockAvailable, "14:42"), offer("w3", 66, 20, models.StockAvailable, "10:55")}},
	{ID: "d_glucophage_500", TradeName: "Glucophage 500mg", ScientificName: "Metformin", Manufacturer: "Merck", Type: "Tablets",
		Offers: []models.DrugOffer{offer("w_raya", 28, 20, models.StockAvailable, "14:42"), offer("w1", 28, 20, models.StockAvailable, "10:30")}},
}

// SeedOrders are the fixture orders shown before any cart is submitted
var SeedOrders = []models.Order{
	{ID: "INV-2024-001", PharmacyID: "user_pharma_1", PharmacyName: "Al Hayat Pharmacy", WarehouseID: "w1", ItemsCount: 15, TotalAmount: 3200, Status: models.OrderStatusPending, OrderDate: "2024-10-10 10:20",
		Details: []models.OrderItem{{Name: "Augmentin 1g", Qty: 10, Price: 210}, {Name: "Panadol Extra", Qty: 5, Price: 108}}},
	{ID: "INV-2024-002", PharmacyID: "other_pharma", PharmacyName: "Al Nour Pharmacy", WarehouseID: "w1", ItemsCount: 8, TotalAmount: 1450, Status: models.OrderStatusCompleted, OrderDate: "2024-10-10 09:45", InvoiceRequested: true,
		Details: []models.OrderItem{{Name: "Concor 5mg", Qty: 20, Price: 72}}},
	{ID: "INV-2024-003", PharmacyID: "other_pharma_2", PharmacyName: "Al Shifa Pharmacy", WarehouseID: "w2", ItemsCount: 22, TotalAmount: 8900, Status: models.OrderStatusProcessing, OrderDate: "2024-10-10 09:30",
		Details: []models.OrderItem{{Name: "Lantus Solostar", Qty: 5, Price: 1244}, {Name: "Nexium 40", Qty: 10, Price: 294}}},
	{ID: "INV-2024-004", PharmacyID: "user_pharma_1", PharmacyName: "Al Hayat Pharmacy", WarehouseID: "w_raya", ItemsCount: 5, TotalAmount: 650, Status: models.OrderStatusCompleted, OrderDate: "2024-10-10 08:30",
		Details: []models.OrderItem{{Name: "Flagyl 500", Qty: 20, Price: 34}}},
	{ID: "INV-2024-005", PharmacyID: "other_pharma_3", PharmacyName: "Al Rawda Pharmacy", WarehouseID: "w3", ItemsCount: 12, TotalAmount: 2100, Status: models.OrderStatusCancelled, OrderDate: "2024-10-09 18:00",
		Details: []models.OrderItem{}},
}

// SeedMarketItems are the fixture surplus listings
var SeedMarketItems = []models.MarketItem{
	{ID: "m1", SellerName: "Al Hayat Pharmacy", TradeName: "Augmentin 1g", Quantity: 10, ExpiryDate: "03/2025", OriginalPrice: 210, SellingPrice: 150, Description: "Sealed boxes, near expiry", Location: "Nasr City", ImageURL: "https://placehold.co/400x300?text=Augmentin", PostedAt: "2024-10-10"},
	{ID: "m2", SellerName: "Al Nour Pharmacy", TradeName: "Panadol Extra", Quantity: 50, ExpiryDate: "06/2025", OriginalPrice: 108, SellingPrice: 85, Description: "Surplus stock", Location: "Maadi", ImageURL: "https://placehold.co/400x300?text=Panadol", PostedAt: "2024-10-09"},
	{ID: "m3", SellerName: "Al Shifa Pharmacy", TradeName: "Concor 5 Plus", Quantity: 20, ExpiryDate: "01/2025", OriginalPrice: 65, SellingPrice: 50, Description: "Limited quantity", Location: "Mohandessin", ImageURL: "https://placehold.co/400x300?text=Concor", PostedAt: "2024-10-09"},
}

// SeedUploadHistory is the fixture history of the seeded warehouse account
var SeedUploadHistory = []models.UploadHistory{
	{ID: "up_1", FileName: "daily_list_oct_10.pdf", UploadTime: "10:00", Status: models.UploadProcessed, ItemsCount: 150},
	{ID: "up_2", FileName: "extra_bonus.xlsx", UploadTime: "14:30", Status: models.UploadProcessed, ItemsCount: 45},
	{ID: "up_3", FileName: "insulins.pdf", UploadTime: "09:00", Status: models.UploadFailed, ItemsCount: 0},
}

// Seed fills every collection that does not exist yet. Fixture passwords are
// hashed with the given bcrypt cost.
func Seed(ctx context.Context, kv KV, hashCost int) error {
	users := make([]models.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), hashCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		u := su.user
		u.PasswordHash = string(hash)
		users = append(users, u)
	}

	requests := make([]models.RegistrationRequest, 0, len(seedRequests))
	for _, sr := range seedRequests {
		hash, err := bcrypt.GenerateFromPassword([]byte(sr.password), hashCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		r := sr.request
		r.PasswordHash = string(hash)
		requests = append(requests, r)
	}

	if _, err := NewCollection[models.User](kv, KeyUsers).Seed(ctx, users); err != nil {
		return err
	}
	if _, err := NewCollection[models.RegistrationRequest](kv, KeyRegistrationRequests).Seed(ctx, requests); err != nil {
		return err
	}
	if _, err := NewCollection[models.Order](kv, KeyOrders).Seed(ctx, SeedOrders); err != nil {
		return err
	}
	if _, err := NewCollection[models.Drug](kv, KeyDrugs).Seed(ctx, SeedDrugs); err != nil {
		return err
	}
	if _, err := NewCollection[models.Warehouse](kv, KeyWarehouses).Seed(ctx, SeedWarehouses); err != nil {
		return err
	}
	if _, err := NewCollection[models.MarketItem](kv, KeyMarketItems).Seed(ctx, SeedMarketItems); err != nil {
		return err
	}
	if _, err := NewCollection[models.UploadHistory](kv, UploadHistoryKey("w1")).Seed(ctx, SeedUploadHistory); err != nil {
		return err
	}
	return nil
}
