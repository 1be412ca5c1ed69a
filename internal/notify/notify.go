// Package notify предоставляет системные уведомления.
package notify

import (
	"github.com/gen2brain/beeep"

	"github.com/mofa-org/mofa-input/internal/i18n"
)

const appName = "MoFA Input"

// Notifier отправляет системные уведомления.
type Notifier struct {
	enabled bool
}

// New создаёт новый Notifier.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// SetEnabled включает/выключает уведомления.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// Recording показывает уведомление о начале записи.
func (n *Notifier) Recording() {
	n.notify(i18n.T("notify_recording"), i18n.T("notify_recording_hint"))
}

// Success показывает уведомление с вставленным текстом.
func (n *Notifier) Success(text string) {
	if len(text) > 100 {
		text = text[:100] + "..."
	}
	n.notify(i18n.T("notify_done"), text)
}

// Empty показывает уведомление об отброшенной записи.
func (n *Notifier) Empty() {
	n.notify(i18n.T("notify_empty"), i18n.T("notify_empty_hint"))
}

// ClipboardFallback сообщает, что текст остался в буфере обмена.
func (n *Notifier) ClipboardFallback() {
	n.notify(i18n.T("notify_error"), i18n.T("notify_clipboard_saved"))
}

// DownloadStarted сообщает о начале скачивания модели.
func (n *Notifier) DownloadStarted(name string) {
	n.notify(i18n.T("notify_download"), name)
}

// DownloadDone сообщает о завершении скачивания модели.
func (n *Notifier) DownloadDone(name string) {
	n.notify(i18n.T("notify_download_done"), name)
}

// ModelDeleted сообщает об удалении модели.
func (n *Notifier) ModelDeleted(name string) {
	n.notify(i18n.T("notify_model_deleted"), name)
}

// Error показывает уведомление об ошибке.
func (n *Notifier) Error(msg string) {
	n.notify(i18n.T("notify_error"), msg)
}

// Ready показывает уведомление о готовности приложения.
func (n *Notifier) Ready() {
	n.notify("", i18n.T("notify_ready"))
}

func (n *Notifier) notify(title, message string) {
	if !n.enabled {
		return
	}
	// Игнорируем ошибки уведомлений - они не критичны
	if title != "" {
		_ = beeep.Notify(appName+": "+title, message, "")
	} else {
		_ = beeep.Notify(appName, message, "")
	}
}
