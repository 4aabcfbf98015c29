package models

import "time"

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Supplier provides stock for purchases. Rating is a running mean in [0, 5].
type Supplier struct {
	ID            string  `json:"id" gorm:"type:varchar(32);primaryKey"`
	Name          string  `json:"name" gorm:"type:varchar(255);not null;index"`
	ContactPerson string  `json:"contactPerson" gorm:"type:varchar(255)"`
	Phone         string  `json:"phone" gorm:"type:varchar(50)"`
	Email         string  `json:"email" gorm:"type:varchar(255)"`
	Address       string  `json:"address" gorm:"type:text"`
	Rating        float64 `json:"rating" gorm:"not null"`
	TotalOrders   int     `json:"totalOrders" gorm:"not null"`
	Active        bool    `json:"active" gorm:"not null;index"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime:false;not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime:false;not null"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

func (s *Supplier) EntityID() string {
	return s.ID
}

func (s *Supplier) Touch(now time.Time) {
	s.UpdatedAt = now
}

func (s *Supplier) IncrementOrderCount() {
	s.TotalOrders++
}

// ApplyRating folds a new rating into the running mean, weighted by prior
// orders. The caller validates the range.
func (s *Supplier) ApplyRating(rating float64) {
	if s.TotalOrders == 0 {
		s.Rating = rating
		return
	}
	orders := float64(s.TotalOrders)
	s.Rating = (s.Rating*orders + rating) / (orders + 1)
}

func (s *Supplier) PerformanceLevel() string {
	switch {
	case s.Rating >= 4.5:
		return "Excellent"
	case s.Rating >= 3.5:
		return "Good"
	case s.Rating >= 2.5:
		return "Average"
	case s.Rating >= 1.5:
		return "Below Average"
	default:
		return "Poor"
	}
}

// SupplierView adds derived fields for API responses
type SupplierView struct {
	Supplier
	PerformanceLevel string `json:"performanceLevel"`
}

func NewSupplierView(s *Supplier) SupplierView {
	return SupplierView{Supplier: *s, PerformanceLevel: s.PerformanceLevel()}
}

type SupplierResponse struct {
	Success bool          `json:"success"`
	Data    *SupplierView `json:"data,omitempty"`
	Message *string       `json:"message,omitempty"`
}

type SupplierListResponse struct {
	Success bool           `json:"success"`
	Data    []SupplierView `json:"data"`
	Total   int            `json:"total"`
}
