package inject

import (
	"runtime"

	"github.com/micmonay/keybd_event"
)

// sendPasteShortcut эмулирует системный хоткей вставки:
// Cmd+V на macOS, Ctrl+V на остальных платформах.
func sendPasteShortcut() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}

	kb.SetKeys(keybd_event.VK_V)
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}

	return kb.Launching()
}
