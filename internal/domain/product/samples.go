package product

import "github.com/shopspring/decimal"

// KnownVendors maps sample product names to the vendor the backfill assigns.
var KnownVendors = map[string]string{
	"Laptop Pro":          "TechCorp",
	"Wireless Headphones": "AudioMax",
	"Smart Watch":         "SmartTech",
	"Coffee Maker":        "HomeBrew",
	"Gaming Mouse":        "GamingPro",
	"Mechanical Keyboard": "KeyMaster",
	"4K Monitor":          "DisplayTech",
	"Portable SSD":        "StoragePlus",
}

// VendorFor returns the backfill vendor for a product name.
func VendorFor(name string) string {
	if v, ok := KnownVendors[name]; ok {
		return v
	}
	return DefaultVendor
}

// SampleDrafts is the demo catalog used by the seed tool.
func SampleDrafts() []Draft {
	return []Draft{
		{
			Name:        "Laptop Pro",
			Description: "A high-performance laptop for all your professional needs. Features a stunning display and blazing-fast processor.",
			Price:       decimal.RequireFromString("1299.99"),
			ImageURL:    "https://placehold.co/600x600/3498db/ffffff?text=Laptop+Pro",
		},
		{
			Name:        "Wireless Headphones",
			Description: "Immerse yourself in crystal-clear audio with these noise-cancelling wireless headphones. Long-lasting battery life.",
			Price:       decimal.RequireFromString("199.99"),
			ImageURL:    "https://placehold.co/600x600/9b59b6/ffffff?text=Headphones",
		},
		{
			Name:        "Smart Watch",
			Description: "Stay connected and track your fitness goals with this sleek and stylish smart watch. Syncs with your smartphone.",
			Price:       decimal.RequireFromString("249.50"),
			ImageURL:    "https://placehold.co/600x600/e74c3c/ffffff?text=Smart+Watch",
		},
		{
			Name:        "Coffee Maker",
			Description: "Brew the perfect cup of coffee every morning. Programmable and easy to clean.",
			Price:       decimal.RequireFromString("89.99"),
			ImageURL:    "https://placehold.co/600x600/1abc9c/ffffff?text=Coffee+Maker",
		},
		{
			Name:        "Gaming Mouse",
			Description: "Get the competitive edge with this ergonomic gaming mouse, featuring customizable buttons and RGB lighting.",
			Price:       decimal.RequireFromString("79.99"),
			ImageURL:    "https://placehold.co/600x600/f1c40f/ffffff?text=Gaming+Mouse",
		},
		{
			Name:        "Mechanical Keyboard",
			Description: "A durable and responsive mechanical keyboard for typing and gaming. Satisfying tactile feedback.",
			Price:       decimal.RequireFromString("120.00"),
			ImageURL:    "https://placehold.co/600x600/2ecc71/ffffff?text=Keyboard",
		},
		{
			Name:        "4K Monitor",
			Description: "Experience stunning visuals with this 27-inch 4K UHD monitor. Perfect for creative work and entertainment.",
			Price:       decimal.RequireFromString("450.00"),
			ImageURL:    "https://placehold.co/600x600/34495e/ffffff?text=4K+Monitor",
		},
		{
			Name:        "Portable SSD",
			Description: "1TB of lightning-fast storage in a compact design. Transfer large files in seconds.",
			Price:       decimal.RequireFromString("150.00"),
			ImageURL:    "https://placehold.co/600x600/e67e22/ffffff?text=Portable+SSD",
		},
	}
}
