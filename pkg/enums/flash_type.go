package enums

import "fmt"

// FlashType classifies storefront flash messages.
type FlashType string

const (
	FlashSuccess FlashType = "success"
	FlashInfo    FlashType = "info"
	FlashError   FlashType = "error"
)

var validFlashTypes = []FlashType{FlashSuccess, FlashInfo, FlashError}

func (f FlashType) String() string {
	return string(f)
}

func (f FlashType) IsValid() bool {
	for _, candidate := range validFlashTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

func ParseFlashType(value string) (FlashType, error) {
	for _, candidate := range validFlashTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid flash type %q", value)
}
