package configuration

import "errors"

// ErrInvalidSetting is returned when a setting is outside its allowed range.
var ErrInvalidSetting = errors.New("invalid setting")
