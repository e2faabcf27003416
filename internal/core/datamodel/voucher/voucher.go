package voucher

import "time"

// Voucher is a fixed-amount discount code. The discount recorded on a
// session is capped at the order total when applied; the voucher itself
// stores the face value.
type Voucher struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	Code           string     `json:"code" gorm:"column:code;not null;uniqueIndex"`
	DiscountAmount int64      `json:"discount_amount" gorm:"column:discount_amount;not null"`
	MinOrderAmount int64      `json:"min_order_amount" gorm:"column:min_order_amount;default:0"`
	IsActive       bool       `json:"is_active" gorm:"column:is_active;default:true"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" gorm:"column:expires_at"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Voucher) TableName() string {
	return "vouchers"
}
