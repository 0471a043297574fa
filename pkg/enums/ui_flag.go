package enums

import "fmt"

// UIFlag names one of the storefront's visibility toggles.
type UIFlag string

const (
	UIFlagLoginModal     UIFlag = "login_modal"
	UIFlagCartDrawer     UIFlag = "cart_drawer"
	UIFlagProfileDrawer  UIFlag = "profile_drawer"
	UIFlagBookingsDrawer UIFlag = "bookings_drawer"
	UIFlagWalletDrawer   UIFlag = "wallet_drawer"
)

var validUIFlags = []UIFlag{
	UIFlagLoginModal,
	UIFlagCartDrawer,
	UIFlagProfileDrawer,
	UIFlagBookingsDrawer,
	UIFlagWalletDrawer,
}

// String implements fmt.Stringer.
func (u UIFlag) String() string {
	return string(u)
}

// ParseUIFlag converts raw input into a UIFlag.
func ParseUIFlag(value string) (UIFlag, error) {
	for _, candidate := range validUIFlags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ui flag %q", value)
}

// UIFlags lists every flag in display order.
func UIFlags() []UIFlag {
	out := make([]UIFlag, len(validUIFlags))
	copy(out, validUIFlags)
	return out
}
