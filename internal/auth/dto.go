package auth

import (
	"github.com/vqminh/tour-booking/internal/core/common/validation"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("email", r.Email).Required().MaxLength(254)
	v.Field("password", r.Password).Required().MinLength(8)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("refresh_token", r.RefreshToken).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
