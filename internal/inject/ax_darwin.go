//go:build darwin

package inject

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation
#include <ApplicationServices/ApplicationServices.h>
#include <stdlib.h>

// axInsertText вставляет текст в фокусное поле через Accessibility API,
// заменяя текущее выделение (пустое выделение = вставка в позицию курсора).
// Коды: 0 - успех, -1 - нет разрешения, -2 - нет фокусного элемента,
// -3 - элемент не принимает текст.
static int axInsertText(const char* text) {
    if (!AXIsProcessTrusted()) {
        return -1;
    }

    AXUIElementRef systemWide = AXUIElementCreateSystemWide();
    AXUIElementRef focused = NULL;
    AXError err = AXUIElementCopyAttributeValue(
        systemWide, kAXFocusedUIElementAttribute, (CFTypeRef*)&focused);
    CFRelease(systemWide);

    if (err != kAXErrorSuccess || focused == NULL) {
        return -2;
    }

    CFStringRef str = CFStringCreateWithCString(NULL, text, kCFStringEncodingUTF8);
    err = AXUIElementSetAttributeValue(focused, kAXSelectedTextAttribute, str);
    CFRelease(str);
    CFRelease(focused);

    return (err == kAXErrorSuccess) ? 0 : -3;
}

static int axTrusted() {
    return AXIsProcessTrusted() ? 1 : 0;
}
*/
import "C"
import (
	"errors"
	"fmt"
	"unsafe"
)

type accessibilityTier struct{}

func newAccessibilityTier() tier {
	return accessibilityTier{}
}

func (accessibilityTier) Method() Method {
	return MethodAccessibility
}

func (accessibilityTier) Deliver(text string) error {
	cstr := C.CString(text)
	defer C.free(unsafe.Pointer(cstr))

	switch rc := C.axInsertText(cstr); rc {
	case 0:
		return nil
	case -1:
		return fmt.Errorf("%w: нет разрешения Accessibility", ErrUnsupported)
	case -2:
		return errors.New("нет фокусного элемента")
	default:
		return errors.New("элемент не принимает текст")
	}
}

// CheckPermission проверяет разрешение Accessibility. Без него не
// работают ни вставка, ни эмуляция клавиш.
func CheckPermission() error {
	if C.axTrusted() == 0 {
		return errors.New("требуется разрешение Accessibility в системных настройках")
	}
	return nil
}
