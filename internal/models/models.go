package models

import (
	"time"
)

type Cupcake struct {
	ID                 int        `gorm:"primaryKey;autoIncrement"  json:"id"`
	Title              string     `gorm:"not null"                  json:"title"`
	Description        string     `gorm:"not null"                  json:"description"`
	Ingredients        string     `gorm:"not null"                  json:"ingredients"`
	Price              float64    `gorm:"not null"                  json:"price"`
	Image              string     `json:"image"`
	IsNew              bool       `gorm:"default:false"             json:"is_new"`
	IsBlackFriday      bool       `gorm:"default:false"             json:"is_black_friday"`
	IsChristmas        bool       `gorm:"default:false"             json:"is_christmas"`
	Discount           int        `gorm:"default:0"                 json:"discount"`
	OrderCount         int        `gorm:"default:0"                 json:"order_count"`
	Stock              int        `gorm:"default:0"                 json:"stock"`
	PromotionType      *string    `json:"promotion_type"`
	PromotionValue     *float64   `json:"promotion_value"`
	PromotionStartDate *time.Time `json:"promotion_start_date"`
	PromotionEndDate   *time.Time `json:"promotion_end_date"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type Profile struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null"     json:"user_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	CPF            string    `gorm:"column:cpf"               json:"cpf"`
	Phone          string    `json:"phone"`
	CEP            string    `gorm:"column:cep"               json:"cep"`
	Address        string    `json:"address"`
	Number         string    `json:"number"`
	Complement     string    `json:"complement"`
	Neighborhood   string    `json:"neighborhood"`
	City           string    `json:"city"`
	AdditionalInfo string    `json:"additional_info"`
	IsAdmin        bool      `gorm:"default:false"            json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	JTI       string `gorm:"column:jti;index"    json:"jti"`
	Role      string `json:"role"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

// CartItem is the per-user persisted mirror of the session cart. At most one
// row per (user, cupcake) pair; repeated adds merge into Quantity. Title and
// Price are snapshots taken at add time, so a later price change does not
// reprice an already-carted item.
type CartItem struct {
	ID        uint    `gorm:"primaryKey"                             json:"id"`
	UserID    uint    `gorm:"index:idx_user_cupcake,unique;not null" json:"user_id"`
	CupcakeID int     `gorm:"index:idx_user_cupcake,unique;not null" json:"cupcake_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  uint    `gorm:"default:1;check:quantity>0"             json:"quantity"`
}

type Order struct {
	ID          uint      `gorm:"primaryKey"     json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	TotalAmount float64   `gorm:"not null"       json:"total_amount"`
	Status      string    `gorm:"not null"       json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID          uint    `gorm:"primaryKey"     json:"id"`
	OrderID     uint    `gorm:"index;not null" json:"order_id"`
	CupcakeID   int     `gorm:"not null"       json:"cupcake_id"`
	Quantity    uint    `gorm:"not null"       json:"quantity"`
	PriceAtTime float64 `gorm:"not null"       json:"price_at_time"`
}

// ActivityLog rows are append-only; nothing in the application updates or
// deletes them.
type ActivityLog struct {
	ID         uint      `gorm:"primaryKey"     json:"id"`
	UserID     uint      `gorm:"index"          json:"user_id"`
	Action     string    `gorm:"not null"       json:"action"`
	EntityType string    `gorm:"not null"       json:"entity_type"`
	EntityID   string    `gorm:"not null"       json:"entity_id"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}
