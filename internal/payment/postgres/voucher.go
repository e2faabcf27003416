package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vqminh/tour-booking/internal"
	voucherdm "github.com/vqminh/tour-booking/internal/core/datamodel/voucher"
	paymentpkg "github.com/vqminh/tour-booking/internal/payment"
)

type VoucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) paymentpkg.VoucherRepository {
	return &VoucherRepository{db: db}
}

func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*voucherdm.Voucher, error) {
	var v voucherdm.Voucher
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("voucher not found", internal.ErrCodeVoucherNotFound)
		}
		return nil, err
	}
	return &v, nil
}
