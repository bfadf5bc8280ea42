package core

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ValidateLatLon rejects non-finite values and values outside the WGS84 ranges.
func ValidateLatLon(latitude, longitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		return fmt.Errorf("%w: latitude must be a finite number", ErrValidation)
	}
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return fmt.Errorf("%w: longitude must be a finite number", ErrValidation)
	}
	if latitude < MinLatitude || latitude > MaxLatitude {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrValidation, latitude)
	}
	if longitude < MinLongitude || longitude > MaxLongitude {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrValidation, longitude)
	}
	return nil
}

// RoundCoordinate rounds half away from zero to the given number of decimal places.
// Seven places is roughly one centimetre at the equator.
func RoundCoordinate(value float64, places int32) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return rounded
}
