package inject

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

// Clipboard абстрагирует системный буфер обмена.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// systemClipboard - системный буфер через atotto/clipboard.
type systemClipboard struct{}

func newSystemClipboard() Clipboard {
	return systemClipboard{}
}

func (systemClipboard) Read() (string, error) {
	return clipboard.ReadAll()
}

func (systemClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}

const (
	pasteRetries = 3
	pasteBackoff = 90 * time.Millisecond
	pasteSettle  = 260 * time.Millisecond
)

// clipboardTier вставляет текст через буфер обмена: записывает текст,
// эмулирует paste-хоткей и восстанавливает прежнее содержимое буфера.
type clipboardTier struct {
	clip    Clipboard
	paste   func() error
	retries int
	backoff time.Duration
	settle  time.Duration
}

func newClipboardTier(clip Clipboard) *clipboardTier {
	return &clipboardTier{
		clip:    clip,
		paste:   sendPasteShortcut,
		retries: pasteRetries,
		backoff: pasteBackoff,
		settle:  pasteSettle,
	}
}

func (t *clipboardTier) Method() Method {
	return MethodClipboard
}

// Deliver записывает текст в буфер и жмёт paste. Прежнее содержимое
// буфера восстанавливается в любом случае - и при успехе, и при ошибке.
func (t *clipboardTier) Deliver(text string) error {
	original, readErr := t.clip.Read()

	defer func() {
		if readErr == nil {
			t.clip.Write(original)
		}
	}()

	var lastErr error
	for i := 0; i < t.retries; i++ {
		if i > 0 {
			time.Sleep(t.backoff)
		}

		if err := t.clip.Write(text); err != nil {
			lastErr = fmt.Errorf("запись в буфер: %w", err)
			continue
		}

		if err := t.paste(); err != nil {
			lastErr = fmt.Errorf("эмуляция paste: %w", err)
			continue
		}

		// Даём приложению время обработать paste до восстановления буфера
		time.Sleep(t.settle)
		return nil
	}

	return lastErr
}
