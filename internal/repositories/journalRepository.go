package repositories

import (
	"PerpTradeBot/internal/models"
	"errors"
	"time"

	"gorm.io/gorm"
)

// JournalRepository persists signal evaluations and order placements.
// Write-mostly; the trading core never reads the journal back, it only
// exists for after-the-fact inspection.
type JournalRepository struct {
	db *gorm.DB
}

// NewJournalRepository creates a new instance of JournalRepository
func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// RecordSignal adds a SignalRecord to the database
func (r *JournalRepository) RecordSignal(record *models.SignalRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	return r.db.Create(record).Error
}

// RecordOrder adds an OrderRecord to the database
func (r *JournalRepository) RecordOrder(record *models.OrderRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	return r.db.Create(record).Error
}

// RecentSignals retrieves signal records for a symbol since a point in time
func (r *JournalRepository) RecentSignals(symbol string, since time.Time) ([]models.SignalRecord, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}
	var records []models.SignalRecord
	err := r.db.Where("symbol = ? AND evaluated_at >= ?", symbol, since).
		Order("evaluated_at ASC").
		Find(&records).Error
	return records, err
}

// RecentOrders retrieves order records for a symbol since a point in time
func (r *JournalRepository) RecentOrders(symbol string, since time.Time) ([]models.OrderRecord, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}
	var records []models.OrderRecord
	err := r.db.Where("symbol = ? AND placed_at >= ?", symbol, since).
		Order("placed_at ASC").
		Find(&records).Error
	return records, err
}

// LastOrder retrieves the most recent order record for a symbol
func (r *JournalRepository) LastOrder(symbol string) (*models.OrderRecord, error) {
	if symbol == "" {
		return nil, errors.New("invalid symbol")
	}
	var record models.OrderRecord
	err := r.db.Where("symbol = ?", symbol).
		Order("placed_at DESC").
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &record, err
}
