package store

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
)

var seedNamespace = uuid.MustParse("6f1c7a52-3f0e-4a55-9b7e-2f4d3c8a9e10")

// SeedID derives a stable UUID from a seed name
func SeedID(name string) string {
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}

func variant(sku, size, price string, stock int) core.ProductVariant {
	return core.ProductVariant{SKU: sku, Size: size, Price: decimal.RequireFromString(price), Stock: stock}
}

// SeedCatalog is the initial product catalog
var SeedCatalog = []core.Product{
	{
		ID: SeedID("product:adult-chicken-dry"), Category: "Dog Food", Brand: "Royal Paws",
		Name: "Adult Dog Dry Food - Chicken & Rice", NameAr: "طعام جاف للكلاب البالغة - دجاج وأرز",
		Description: "Complete nutrition for adult dogs of all breeds.", DescriptionAr: "تغذية متكاملة للكلاب البالغة من جميع السلالات.",
		IsActive: true,
		Variants: []core.ProductVariant{
			variant("RP-ACR-2KG", "2kg", "55.00", 120),
			variant("RP-ACR-7KG", "7kg", "165.00", 60),
			variant("RP-ACR-15KG", "15kg", "310.00", 25),
		},
	},
	{
		ID: SeedID("product:puppy-lamb-dry"), Category: "Dog Food", Brand: "Royal Paws",
		Name: "Puppy Dry Food - Lamb", NameAr: "طعام جاف للجراء - لحم ضأن",
		Description: "Gentle recipe for growing puppies.", DescriptionAr: "وصفة لطيفة للجراء في مرحلة النمو.",
		IsActive: true,
		Variants: []core.ProductVariant{
			variant("RP-PL-2KG", "2kg", "62.00", 80),
			variant("RP-PL-7KG", "7kg", "185.00", 40),
		},
	},
	{
		ID: SeedID("product:cat-salmon-dry"), Category: "Cat Food", Brand: "Whisker Farm",
		Name: "Indoor Cat Dry Food - Salmon", NameAr: "طعام جاف للقطط المنزلية - سلمون",
		Description: "Hairball control formula with real salmon.", DescriptionAr: "تركيبة للتحكم في كرات الشعر مع سلمون حقيقي.",
		IsActive: true,
		Variants: []core.ProductVariant{
			variant("WF-ICS-1.5KG", "1.5kg", "48.00", 150),
			variant("WF-ICS-4KG", "4kg", "115.00", 70),
		},
	},
	{
		ID: SeedID("product:cat-tuna-wet"), Category: "Cat Food", Brand: "Whisker Farm",
		Name: "Wet Cat Food - Tuna in Jelly (12 pack)", NameAr: "طعام رطب للقطط - تونة بالهلام (12 عبوة)",
		Description: "Tender tuna chunks in jelly.", DescriptionAr: "قطع تونة طرية في الهلام.",
		IsActive: true,
		Variants: []core.ProductVariant{
			variant("WF-TJ-12x85G", "12 x 85g", "39.00", 200),
		},
	},
	{
		ID: SeedID("product:dog-dental-treats"), Category: "Treats", Brand: "Happy Tails",
		Name: "Dental Chew Treats", NameAr: "مكافآت مضغ لصحة الأسنان",
		Description: "Daily dental care chews for medium dogs.", DescriptionAr: "مضغات يومية للعناية بالأسنان للكلاب المتوسطة.",
		IsActive: true,
		Variants: []core.ProductVariant{
			variant("HT-DC-7PCS", "7 pcs", "29.00", 300),
			variant("HT-DC-28PCS", "28 pcs", "99.00", 90),
		},
	},
	{
		ID: SeedID("product:bird-seed-mix"), Category: "Bird Food", Brand: "Feather & Co",
		Name: "Parakeet Seed Mix", NameAr: "خليط بذور للببغاوات الصغيرة",
		Description: "Balanced seed blend with added vitamins.", DescriptionAr: "خليط بذور متوازن مع فيتامينات مضافة.",
		IsActive: true,
		Variants: []core.ProductVariant{
			variant("FC-PSM-1KG", "1kg", "22.00", 110),
		},
	},
}

type demoCustomer struct {
	first, last, email, phone, city, emirate string
}

var demoCustomers = []demoCustomer{
	{"Layla", "Haddad", "layla.haddad@example.com", "+971501112233", "Dubai Marina", "Dubai"},
	{"Omar", "Al Mansoori", "omar.mansoori@example.com", "+971502223344", "Khalifa City", "Abu Dhabi"},
	{"Sara", "Khan", "sara.khan@example.com", "+971503334455", "Al Majaz", "Sharjah"},
	{"James", "Carter", "j.carter@example.com", "+971504445566", "Jumeirah", "Dubai"},
	{"Fatima", "Al Nuaimi", "fatima.n@example.com", "+971505556677", "Al Nuaimiya", "Ajman"},
	{"Priya", "Nair", "priya.nair@example.com", "+971506667788", "Al Hamra", "Ras Al Khaimah"},
}

var demoStatuses = []core.OrderStatus{
	core.OrderStatusDelivered,
	core.OrderStatusDelivered,
	core.OrderStatusShipped,
	core.OrderStatusProcessing,
	core.OrderStatusPending,
	core.OrderStatusCancelled,
}

var demoPayments = []core.PaymentMethod{
	core.PaymentMethodCOD,
	core.PaymentMethodCard,
	core.PaymentMethodBankTransfer,
}

// DemoOrders generates count deterministic orders spread over the 120 days
// before now, priced from SeedCatalog under policy.
func DemoOrders(now time.Time, count int, policy core.ShippingPolicy) []*core.Order {
	rng := rand.New(rand.NewSource(20240501))
	window := int64(120 * 24 * time.Hour)

	orders := make([]*core.Order, 0, count)
	for i := 0; i < count; i++ {
		createdAt := now.Add(-time.Duration(rng.Int63n(window))).Truncate(time.Minute)
		customer := demoCustomers[rng.Intn(len(demoCustomers))]

		lines := 1 + rng.Intn(3)
		seen := make(map[string]bool)
		items := make([]core.OrderItem, 0, lines)
		subtotal := decimal.Zero
		for j := 0; j < lines; j++ {
			product := SeedCatalog[rng.Intn(len(SeedCatalog))]
			v := product.Variants[rng.Intn(len(product.Variants))]
			if seen[v.SKU] {
				continue
			}
			seen[v.SKU] = true

			item := core.NewOrderItem(core.CartItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Size:        v.Size,
				SKU:         v.SKU,
				Quantity:    1 + rng.Intn(3),
				Price:       v.Price,
			})
			items = append(items, item)
			subtotal = subtotal.Add(item.Subtotal)
		}
		shipping := policy.Fee(subtotal)

		orders = append(orders, &core.Order{
			ID:          SeedID(fmt.Sprintf("order:%d", i)),
			OrderNumber: fmt.Sprintf("PF-%s-%s", createdAt.Format("20060102"), strings.ToUpper(SeedID(fmt.Sprintf("order-number:%d", i))[:6])),
			Customer: core.CustomerInfo{
				FirstName: customer.first,
				LastName:  customer.last,
				Email:     customer.email,
				Phone:     customer.phone,
			},
			DeliveryAddress: core.DeliveryAddress{
				Address: fmt.Sprintf("Building %d, Apartment %d", 1+rng.Intn(40), 100+rng.Intn(900)),
				City:    customer.city,
				Emirate: customer.emirate,
			},
			Items:         items,
			Subtotal:      subtotal,
			Shipping:      shipping,
			Total:         subtotal.Add(shipping),
			Status:        demoStatuses[rng.Intn(len(demoStatuses))],
			PaymentMethod: demoPayments[rng.Intn(len(demoPayments))],
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		})
	}

	return orders
}
