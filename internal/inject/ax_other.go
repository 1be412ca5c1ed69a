//go:build !darwin

package inject

type accessibilityTier struct{}

func newAccessibilityTier() tier {
	return accessibilityTier{}
}

func (accessibilityTier) Method() Method {
	return MethodAccessibility
}

func (accessibilityTier) Deliver(text string) error {
	return ErrUnsupported
}

// CheckPermission на этой платформе не требует системных разрешений.
func CheckPermission() error {
	return nil
}
