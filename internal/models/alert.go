package models

import "time"

// SystemResolver marks alerts resolved automatically by stock replenishment.
// It is never accepted as a user identifier.
const SystemResolver = "SYSTEM"

// AlertType represents the condition an alert reports
type AlertType string

const (
	AlertTypeLowStock      AlertType = "low_stock"
	AlertTypeOutOfStock    AlertType = "out_of_stock"
	AlertTypeCriticalStock AlertType = "critical_stock"
	AlertTypePriceChange   AlertType = "price_change"
	AlertTypeSupplierIssue AlertType = "supplier_issue"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeLowStock, AlertTypeOutOfStock, AlertTypeCriticalStock, AlertTypePriceChange, AlertTypeSupplierIssue:
		return true
	}
	return false
}

// AlertPriority represents the priority level of an alert
type AlertPriority string

const (
	AlertPriorityLow      AlertPriority = "low"
	AlertPriorityMedium   AlertPriority = "medium"
	AlertPriorityHigh     AlertPriority = "high"
	AlertPriorityCritical AlertPriority = "critical"
)

func (p AlertPriority) Valid() bool {
	switch p {
	case AlertPriorityLow, AlertPriorityMedium, AlertPriorityHigh, AlertPriorityCritical:
		return true
	}
	return false
}

// Alert is raised against a product when its stock crosses a threshold.
// Once resolved it stays resolved.
type Alert struct {
	ID        string        `json:"id" gorm:"type:varchar(32);primaryKey"`
	Type      AlertType     `json:"type" gorm:"type:varchar(32);not null;index"`
	Priority  AlertPriority `json:"priority" gorm:"type:varchar(16);not null;index"`
	ProductID string        `json:"productId" gorm:"type:varchar(32);not null;index"`
	Message   string        `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time     `json:"createdAt" gorm:"autoCreateTime:false;not null"`

	Resolved   bool       `json:"resolved" gorm:"not null;index"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy *string    `json:"resolvedBy,omitempty" gorm:"type:varchar(64)"`
}

func (Alert) TableName() string {
	return "alerts"
}

func (a *Alert) EntityID() string {
	return a.ID
}

// Resolve marks the alert resolved. It returns false, leaving the alert
// untouched, when the alert was already resolved.
func (a *Alert) Resolve(by string, at time.Time) bool {
	if a.Resolved {
		return false
	}
	a.Resolved = true
	a.ResolvedAt = &at
	a.ResolvedBy = &by
	return true
}

func (a *Alert) IsUrgent() bool {
	return a.Priority == AlertPriorityCritical || a.Priority == AlertPriorityHigh
}

// IsStockAlert reports whether replenishment clears this alert
func (a *Alert) IsStockAlert() bool {
	return a.Type == AlertTypeLowStock || a.Type == AlertTypeOutOfStock
}

// AlertSummary counts unresolved alerts
type AlertSummary struct {
	Unresolved int64                   `json:"unresolved"`
	Urgent     int64                   `json:"urgent"`
	ByPriority map[AlertPriority]int64 `json:"byPriority"`
	ByType     map[AlertType]int64     `json:"byType"`
}

// AlertResponse represents response for a single alert
type AlertResponse struct {
	Success bool    `json:"success"`
	Data    *Alert  `json:"data,omitempty"`
	Message *string `json:"message,omitempty"`
}

// AlertListResponse represents response for list of alerts
type AlertListResponse struct {
	Success bool    `json:"success"`
	Data    []Alert `json:"data"`
	Total   int     `json:"total"`
}

type AlertSummaryResponse struct {
	Success bool          `json:"success"`
	Data    *AlertSummary `json:"data"`
}
