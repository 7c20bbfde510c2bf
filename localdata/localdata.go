package localdata

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/tomato-client/models"
)

// Store is a small on-disk cache: the last delivery address used at
// checkout, and an offline copy of the user's order history. It is a cache
// only; the server snapshot always wins when one is available.
type Store struct {
	db *gorm.DB
}

type SavedAddress struct {
	ID        uint `gorm:"primaryKey"`
	Label     string
	Street    string
	City      string
	State     string
	Pincode   string
	Landmark  string
	UpdatedAt time.Time
}

type CachedOrder struct {
	OrderID   string `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Status    string
	Payload   string
	CreatedAt time.Time
	CachedAt  time.Time
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&SavedAddress{}, &CachedOrder{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// SaveAddress remembers the address for the next checkout prefill. Only one
// row is kept.
func (s *Store) SaveAddress(addr models.DeliveryAddress) error {
	row := SavedAddress{
		ID:       1,
		Label:    addr.Label,
		Street:   addr.Street,
		City:     addr.City,
		State:    addr.State,
		Pincode:  addr.Pincode,
		Landmark: addr.Landmark,
	}
	return s.db.Save(&row).Error
}

// LastAddress returns the remembered address, or nil when none was saved.
func (s *Store) LastAddress() (*models.DeliveryAddress, error) {
	var row SavedAddress
	if err := s.db.First(&row, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &models.DeliveryAddress{
		Label:    row.Label,
		Street:   row.Street,
		City:     row.City,
		State:    row.State,
		Pincode:  row.Pincode,
		Landmark: row.Landmark,
	}, nil
}

// CacheOrders replaces the cached history for a user.
func (s *Store) CacheOrders(userID string, orders []models.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&CachedOrder{}).Error; err != nil {
			return err
		}
		for _, order := range orders {
			payload, err := json.Marshal(order)
			if err != nil {
				return err
			}
			row := CachedOrder{
				OrderID:   order.ID,
				UserID:    userID,
				Status:    string(order.Status),
				Payload:   string(payload),
				CreatedAt: order.CreatedAt,
				CachedAt:  time.Now(),
			}
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CachedOrders returns the offline copy of a user's history, newest first.
func (s *Store) CachedOrders(userID string) ([]models.Order, error) {
	var rows []CachedOrder
	if err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		var order models.Order
		if err := json.Unmarshal([]byte(row.Payload), &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}
