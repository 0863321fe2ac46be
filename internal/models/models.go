package models

import (
	"time"
)

// Order status lifecycle. Transitions are enforced by the orders package.
const (
	OrderPending        = "pending"
	OrderConfirmed      = "confirmed"
	OrderPreparing      = "preparing"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
)

// Payment status as mirrored on the order header.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentCredit   = "credit"
	PaymentRefunded = "refunded"
)

// Channel an order came in through. Guest orders reserve stock up front,
// client orders reserve on confirmation, subscription orders are prepaid.
const (
	ChannelClient       = "client"
	ChannelGuest        = "guest"
	ChannelSubscription = "subscription"
)

// Product categories. The category field is the authoritative discriminator
// for pricing tiers.
const (
	CategoryBottle    = "bottle"
	CategoryCarboy    = "carboy"
	CategoryAccessory = "accessory"
)

// User - staff member interacting with the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'staff', 'delivery'
	CreatedAt    time.Time `json:"created_at"`
}

// Client - a registered customer with a delivery address on file
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Phone     string    `gorm:"size:30;index" json:"phone"`
	Address   string    `json:"address"`
	District  string    `gorm:"size:60" json:"district"`
	UserID    *uint     `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Product - the catalog. Stock is mutated only through the stock ledger.
type Product struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	Name            string   `json:"name"`
	Category        string   `gorm:"size:20;index" json:"category"` // bottle | carboy | accessory
	Price           float64  `json:"price"`
	WholesalePrice  *float64 `json:"wholesale_price,omitempty"`
	WholesaleMinQty int      `json:"wholesale_min_qty"` // 0 means the default minimum applies
	StockQuantity   int      `json:"stock_quantity"`
	ImageURL        string   `json:"image_url"`
}

// Order - the transaction header. Never deleted: cancellation is a status.
type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	ClientID       *uint       `gorm:"index" json:"client_id,omitempty"` // nil for guest orders
	Client         *Client     `json:"client,omitempty"`
	Channel        string      `gorm:"size:20;index" json:"channel"` // client | guest | subscription
	Status         string      `gorm:"size:20;index" json:"status"`
	PaymentStatus  string      `gorm:"size:20" json:"payment_status"`
	Subtotal       float64     `json:"subtotal"`
	DeliveryFee    float64     `json:"delivery_fee"`
	Total          float64     `json:"total"` // always subtotal + delivery_fee
	Address        string      `json:"address"`
	District       string      `gorm:"size:60" json:"district"`
	GuestName      string      `json:"guest_name,omitempty"`
	GuestPhone     string      `gorm:"size:30" json:"guest_phone,omitempty"`
	SubscriptionID *uint       `json:"subscription_id,omitempty"`
	DeliveryUserID *uint       `json:"delivery_user_id,omitempty"`
	StockReserved  bool        `json:"stock_reserved"` // true once stock has been deducted for this order
	CreatedAt      time.Time   `json:"created_at"`
	Lines          []OrderLine `gorm:"foreignKey:OrderID" json:"lines"`
}

// OrderLine - one cart row. UnitPrice is a snapshot taken at creation and is
// never recomputed, even if the catalog price changes later.
type OrderLine struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index" json:"order_id"`
	ProductID uint    `json:"product_id"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"` // quantity * unit_price
}

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionCompleted = "completed"
	SubscriptionPaused    = "paused"
)

// Subscription - a prepaid bottle allotment. Invariant:
// bottles_delivered + bottles_remaining == plan_bottles + bonus_bottles.
type Subscription struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ClientID         uint      `gorm:"index" json:"client_id"`
	ProductID        uint      `json:"product_id"` // the plan's carboy product
	PlanBottles      int       `json:"plan_bottles"`
	BonusBottles     int       `json:"bonus_bottles"`
	BottlesDelivered int       `json:"bottles_delivered"`
	BottlesRemaining int       `json:"bottles_remaining"`
	DailyCap         int       `json:"daily_cap"`             // 0 means no cap
	Status           string    `gorm:"size:20" json:"status"` // active | completed | paused
	CreatedAt        time.Time `json:"created_at"`
}

// Payment attempt statuses as reported by the provider.
const (
	PayAttemptPending    = "pending"
	PayAttemptProcessing = "processing"
	PayAttemptCompleted  = "completed"
	PayAttemptFailed     = "failed"
	PayAttemptRefunded   = "refunded"
)

// Payment - one payment attempt against an order. Updated in place as the
// provider reports new states; looked up by TransactionID on webhooks.
type Payment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"index" json:"order_id"`
	Amount         float64   `json:"amount"`
	Method         string    `gorm:"size:20" json:"method"` // cash | card | wallet
	Status         string    `gorm:"size:20" json:"status"`
	TransactionID  string    `gorm:"uniqueIndex;size:64" json:"transaction_id"`
	ProviderDetail string    `json:"provider_detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
