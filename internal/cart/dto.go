package cart

import (
	errors "github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/core/common/validation"
)

type AddItemRequest struct {
	TourID        int64  `json:"tour_id"`
	DepartureDate string `json:"departure_date"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
}

func (r *AddItemRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("tour_id", r.TourID).Required()
	v.Field("departure_date", r.DepartureDate).Required().ISODate()
	v.Field("adults", r.Adults).MinInt(0, errors.ErrCodeValidationFailed)
	v.Field("children", r.Children).MinInt(0, errors.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateItemRequest struct {
	Adults   int  `json:"adults"`
	Children int  `json:"children"`
	Selected bool `json:"selected"`
}

func (r *UpdateItemRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("adults", r.Adults).MinInt(0, errors.ErrCodeValidationFailed)
	v.Field("children", r.Children).MinInt(0, errors.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
