//go:build linux

package inject

import (
	"fmt"
	"os"
	"os/exec"
)

type keystrokeTier struct {
	useWayland bool
}

func newKeystrokeTier() tier {
	return &keystrokeTier{
		useWayland: os.Getenv("WAYLAND_DISPLAY") != "",
	}
}

func (t *keystrokeTier) Method() Method {
	return MethodKeystroke
}

func (t *keystrokeTier) Deliver(text string) error {
	if t.useWayland {
		return t.typeWayland(text)
	}
	return t.typeX11(text)
}

func (t *keystrokeTier) typeX11(text string) error {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return fmt.Errorf("%w: xdotool не установлен", ErrUnsupported)
	}
	return exec.Command("xdotool", "type", "--clearmodifiers", "--", text).Run()
}

func (t *keystrokeTier) typeWayland(text string) error {
	if _, err := exec.LookPath("wtype"); err != nil {
		return fmt.Errorf("%w: wtype не установлен", ErrUnsupported)
	}
	return exec.Command("wtype", text).Run()
}
