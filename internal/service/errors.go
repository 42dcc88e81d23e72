package service

import "errors"

var (
	ErrCouponInactive       = errors.New("coupon is not active")
	ErrNoCouponApplied      = errors.New("no coupon applied to this checkout")
	ErrOfferNotAvailable    = errors.New("offer is not available for this checkout")
	ErrOfferAlreadyAccepted = errors.New("offer already accepted")
)
