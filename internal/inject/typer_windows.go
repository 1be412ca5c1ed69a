//go:build windows

package inject

import (
	"errors"
	"syscall"
	"unicode/utf16"
	"unsafe"
)

var (
	user32        = syscall.NewLazyDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputKeyboard    = 1
	keyEventFKeyUp   = 0x0002
	keyEventFUnicode = 0x0004
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type winInput struct {
	inputType uint32
	ki        keyboardInput
	padding   uint64
}

type keystrokeTier struct{}

func newKeystrokeTier() tier {
	return keystrokeTier{}
}

func (keystrokeTier) Method() Method {
	return MethodKeystroke
}

func (keystrokeTier) Deliver(text string) error {
	runes := utf16.Encode([]rune(text))
	inputs := make([]winInput, 0, len(runes)*2)

	for _, r := range runes {
		// Key down
		inputs = append(inputs, winInput{
			inputType: inputKeyboard,
			ki: keyboardInput{
				wScan:   r,
				dwFlags: keyEventFUnicode,
			},
		})
		// Key up
		inputs = append(inputs, winInput{
			inputType: inputKeyboard,
			ki: keyboardInput{
				wScan:   r,
				dwFlags: keyEventFUnicode | keyEventFKeyUp,
			},
		})
	}

	if len(inputs) == 0 {
		return nil
	}

	sent, _, _ := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		uintptr(unsafe.Sizeof(inputs[0])),
	)

	if int(sent) != len(inputs) {
		return errors.New("SendInput отправил не все события")
	}

	return nil
}
