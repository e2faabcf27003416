package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vqminh/tour-booking/internal"
	bookingpkg "github.com/vqminh/tour-booking/internal/booking"
	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) bookingpkg.Repository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*bookingdm.Booking, error) {
	var b bookingdm.Booking
	err := r.db.WithContext(ctx).First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByPaymentOrderID(ctx context.Context, orderID string) (*bookingdm.Booking, error) {
	var b bookingdm.Booking
	err := r.db.WithContext(ctx).Where("payment_order_id = ?", orderID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]*bookingdm.Booking, error) {
	var bookings []*bookingdm.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) Create(ctx context.Context, b *bookingdm.Booking) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if err != nil {
		if isUniqueViolation(err) {
			return internal.ErrDuplicateBooking
		}
		return err
	}
	return nil
}

// ReplaceCommercial overwrites the full commercial and payment surface of an
// existing booking in one update. Used for retry-payment settlements.
func (r *BookingRepository) ReplaceCommercial(ctx context.Context, b *bookingdm.Booking) error {
	updates := map[string]interface{}{
		"items":                   b.Items,
		"original_amount":         b.OriginalAmount,
		"discount_amount":         b.DiscountAmount,
		"total_amount":            b.TotalAmount,
		"currency":                b.Currency,
		"voucher_code":            b.VoucherCode,
		"status":                  b.Status,
		"payment_order_id":        b.PaymentOrderID,
		"payment_provider":        b.PaymentProvider,
		"payment_status":          b.PaymentStatus,
		"payment_transaction_ref": b.PaymentTransactionRef,
		"paid_at":                 b.PaidAt,
		"updated_at":              time.Now().UTC(),
	}

	res := r.db.WithContext(ctx).
		Model(&bookingdm.Booking{}).
		Where("id = ?", b.ID).
		Updates(updates)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return internal.ErrDuplicateBooking
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) FlagManualProcessing(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&bookingdm.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"requires_manual_processing": true,
			"updated_at":                 time.Now().UTC(),
		}).Error
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status, paymentStatus string) error {
	res := r.db.WithContext(ctx).
		Model(&bookingdm.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"payment_status": paymentStatus,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrBookingNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
