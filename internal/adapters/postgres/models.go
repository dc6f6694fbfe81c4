package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/petfood-ae/storefront/internal/core"
	"github.com/shopspring/decimal"
)

// ProductModel represents the products table structure
type ProductModel struct {
	ID            string                `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name          string                `gorm:"column:name;type:varchar(255);not null"`
	NameAr        string                `gorm:"column:name_ar;type:varchar(255)"`
	Description   string                `gorm:"column:description;type:text"`
	DescriptionAr string                `gorm:"column:description_ar;type:text"`
	Category      string                `gorm:"column:category;type:varchar(100);not null"`
	Brand         string                `gorm:"column:brand;type:varchar(100)"`
	ImageURL      string                `gorm:"column:image_url;type:text"`
	IsActive      bool                  `gorm:"column:is_active;type:boolean;not null;default:true"`
	Variants      []ProductVariantModel `gorm:"foreignKey:ProductID"`
	CreatedAt     time.Time             `gorm:"column:created_at;type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (ProductModel) TableName() string {
	return "products"
}

// ProductVariantModel represents the product_variants table structure
type ProductVariantModel struct {
	SKU       string          `gorm:"column:sku;type:varchar(64);primaryKey"`
	ProductID string          `gorm:"column:product_id;type:uuid;not null;index"`
	Size      string          `gorm:"column:size;type:varchar(50);not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Stock     int             `gorm:"column:stock;type:integer;not null;default:0"`
	SortOrder int             `gorm:"column:sort_order;type:integer;not null;default:0"`
}

func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// ProductModelFromDomain creates ProductModel from core.Product
func ProductModelFromDomain(p *core.Product) *ProductModel {
	variants := make([]ProductVariantModel, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = ProductVariantModel{
			SKU:       v.SKU,
			ProductID: p.ID,
			Size:      v.Size,
			Price:     v.Price,
			Stock:     v.Stock,
			SortOrder: i,
		}
	}

	return &ProductModel{
		ID:            p.ID,
		Name:          p.Name,
		NameAr:        p.NameAr,
		Description:   p.Description,
		DescriptionAr: p.DescriptionAr,
		Category:      p.Category,
		Brand:         p.Brand,
		ImageURL:      p.ImageURL,
		IsActive:      p.IsActive,
		Variants:      variants,
	}
}

// ToDomain converts ProductModel to core.Product
func (p *ProductModel) ToDomain() *core.Product {
	variants := make([]core.ProductVariant, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = core.ProductVariant{
			SKU:   v.SKU,
			Size:  v.Size,
			Price: v.Price,
			Stock: v.Stock,
		}
	}

	return &core.Product{
		ID:            p.ID,
		Name:          p.Name,
		NameAr:        p.NameAr,
		Description:   p.Description,
		DescriptionAr: p.DescriptionAr,
		Category:      p.Category,
		Brand:         p.Brand,
		ImageURL:      p.ImageURL,
		IsActive:      p.IsActive,
		Variants:      variants,
	}
}

// OrderModel represents the orders table structure. Customer and address
// details are stored flat on the order row.
type OrderModel struct {
	ID              string           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string           `gorm:"column:order_number;type:varchar(32);not null;uniqueIndex"`
	CustomerFirst   string           `gorm:"column:customer_first_name;type:varchar(100);not null"`
	CustomerLast    string           `gorm:"column:customer_last_name;type:varchar(100);not null"`
	CustomerEmail   string           `gorm:"column:customer_email;type:varchar(255);not null"`
	CustomerPhone   string           `gorm:"column:customer_phone;type:varchar(20);not null"`
	DeliveryAddress string           `gorm:"column:delivery_address;type:text;not null"`
	DeliveryCity    string           `gorm:"column:delivery_city;type:varchar(100);not null"`
	DeliveryEmirate string           `gorm:"column:delivery_emirate;type:varchar(50);not null"`
	Subtotal        decimal.Decimal  `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Shipping        decimal.Decimal  `gorm:"column:shipping;type:numeric(10,2);not null"`
	Total           decimal.Decimal  `gorm:"column:total;type:numeric(10,2);not null"`
	Status          string           `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	PaymentMethod   string           `gorm:"column:payment_method;type:varchar(20);not null"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time        `gorm:"column:created_at;type:timestamptz;not null"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderModelFromDomain creates OrderModel from core.Order
func OrderModelFromDomain(order *core.Order) *OrderModel {
	items := make([]OrderItemModel, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemModelFromDomain(order.ID, i, item)
	}

	return &OrderModel{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerFirst:   order.Customer.FirstName,
		CustomerLast:    order.Customer.LastName,
		CustomerEmail:   order.Customer.Email,
		CustomerPhone:   order.Customer.Phone,
		DeliveryAddress: order.DeliveryAddress.Address,
		DeliveryCity:    order.DeliveryAddress.City,
		DeliveryEmirate: order.DeliveryAddress.Emirate,
		Subtotal:        order.Subtotal,
		Shipping:        order.Shipping,
		Total:           order.Total,
		Status:          string(order.Status),
		PaymentMethod:   string(order.PaymentMethod),
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// ToDomain converts OrderModel to core.Order
func (o *OrderModel) ToDomain() *core.Order {
	items := make([]core.OrderItem, len(o.Items))
	for i := range o.Items {
		items[i] = o.Items[i].ToDomain()
	}

	return &core.Order{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Customer: core.CustomerInfo{
			FirstName: o.CustomerFirst,
			LastName:  o.CustomerLast,
			Email:     o.CustomerEmail,
			Phone:     o.CustomerPhone,
		},
		DeliveryAddress: core.DeliveryAddress{
			Address: o.DeliveryAddress,
			City:    o.DeliveryCity,
			Emirate: o.DeliveryEmirate,
		},
		Items:         items,
		Subtotal:      o.Subtotal,
		Shipping:      o.Shipping,
		Total:         o.Total,
		Status:        core.OrderStatus(o.Status),
		PaymentMethod: core.PaymentMethod(o.PaymentMethod),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// OrderItemModel represents the order_items table structure. Product name,
// size and price are captured at order time.
type OrderItemModel struct {
	ID          string          `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     string          `gorm:"column:order_id;type:uuid;not null;index"`
	Position    int             `gorm:"column:position;type:integer;not null"`
	ProductID   string          `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;type:varchar(255);not null"`
	Size        string          `gorm:"column:size;type:varchar(50)"`
	SKU         string          `gorm:"column:sku;type:varchar(64);not null"`
	Quantity    int             `gorm:"column:quantity;type:integer;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderItemModelFromDomain creates OrderItemModel from core.OrderItem
func OrderItemModelFromDomain(orderID string, position int, item core.OrderItem) OrderItemModel {
	return OrderItemModel{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		Position:    position,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Size:        item.Size,
		SKU:         item.SKU,
		Quantity:    item.Quantity,
		Price:       item.Price,
		Subtotal:    item.Subtotal,
	}
}

// ToDomain converts OrderItemModel to core.OrderItem
func (oi *OrderItemModel) ToDomain() core.OrderItem {
	return core.OrderItem{
		ProductID:   oi.ProductID,
		ProductName: oi.ProductName,
		Size:        oi.Size,
		SKU:         oi.SKU,
		Quantity:    oi.Quantity,
		Price:       oi.Price,
		Subtotal:    oi.Subtotal,
	}
}

// AdminUserModel represents the admin_users table structure
type AdminUserModel struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	Name         string    `gorm:"column:name;type:varchar(255);not null"`
	Role         string    `gorm:"column:role;type:varchar(20);not null;default:'staff'"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null"`
	IsActive     bool      `gorm:"column:is_active;type:boolean;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (AdminUserModel) TableName() string {
	return "admin_users"
}

// ToDomain converts AdminUserModel to core.AdminUser
func (a *AdminUserModel) ToDomain() *core.AdminUser {
	return &core.AdminUser{
		ID:           a.ID,
		Email:        a.Email,
		Name:         a.Name,
		Role:         a.Role,
		PasswordHash: a.PasswordHash,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
	}
}
