package models

import "time"

// SignalRecord journals one signal evaluation. Written fire-and-forget
// after each evaluation; the trading core never reads it back.
type SignalRecord struct {
	ID     uint   `gorm:"primaryKey"`
	Symbol string `gorm:"index;not null"`

	ShouldTrade bool   `gorm:"not null"`
	Side        string
	Trend       string

	ATRNormalized float64 `gorm:"type:decimal(20,8)"`
	EMAFast       float64 `gorm:"type:decimal(20,8)"`
	EMASlow       float64 `gorm:"type:decimal(20,8)"`
	RSINow        float64 `gorm:"type:decimal(20,8)"`

	EvaluatedAt time.Time `gorm:"index;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (SignalRecord) TableName() string {
	return "signal_records"
}

// OrderRecord journals one order placement attempt and its outcome.
type OrderRecord struct {
	ID     uint   `gorm:"primaryKey"`
	Symbol string `gorm:"index;not null"`

	OrderType string  `gorm:"not null"`
	Side      string  `gorm:"not null"`
	Amount    float64 `gorm:"type:decimal(20,8);not null"`
	Price     float64 `gorm:"type:decimal(20,8)"`
	PosSide   string

	ExchangeOrderID int64
	Status          string

	PlacedAt  time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (OrderRecord) TableName() string {
	return "order_records"
}
