// Package tray предоставляет системный трей с меню.
package tray

import (
	"github.com/getlantern/systray"

	"github.com/mofa-org/mofa-input/embedded"
	"github.com/mofa-org/mofa-input/internal/i18n"
)

// State представляет состояние пайплайна для отображения в трее.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
	StateError
)

// Callbacks содержит обработчики событий меню.
type Callbacks struct {
	OnNotificationsToggle func() bool
	OnOutputToggle        func() bool
	OnHotkeyClick         func()
	OnModelClick          func(modelID string)
	OnQuit                func()
}

// ModelEntry описывает модель в подменю управления моделями.
type ModelEntry struct {
	ID         string
	Name       string
	Downloaded bool
}

// Tray управляет иконкой в системном трее.
type Tray struct {
	callbacks  Callbacks
	models     []ModelEntry
	status     *systray.MenuItem
	notifyOn   *systray.MenuItem
	polished   *systray.MenuItem
	hotkeyBtn  *systray.MenuItem
	modelsMenu *systray.MenuItem
	modelItems map[string]*systray.MenuItem
	quitBtn    *systray.MenuItem
}

// New создаёт новый Tray. models - список моделей для подменю
// скачивания/удаления.
func New(callbacks Callbacks, models []ModelEntry) *Tray {
	return &Tray{
		callbacks: callbacks,
		models:    models,
	}
}

// Run запускает системный трей. Блокирующая функция.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(embedded.IconIdle)
	systray.SetTitle("MoFA Input")
	systray.SetTooltip(i18n.T("app_tooltip"))

	// Статус
	t.status = systray.AddMenuItem(i18n.T("tray_ready"), "")
	t.status.Disable()

	systray.AddSeparator()

	// Уведомления
	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), true)

	// Режим вывода: полированный или сырой текст
	t.polished = systray.AddMenuItemCheckbox(i18n.T("tray_output_polished"), i18n.T("tray_output_hint"), true)

	// Горячая клавиша
	t.hotkeyBtn = systray.AddMenuItem(i18n.T("tray_hotkey"), i18n.T("tray_hotkey_hint"))

	// Модели: галочка - скачана, клик скачивает или удаляет
	t.modelsMenu = systray.AddMenuItem(i18n.T("tray_models"), i18n.T("tray_models_hint"))
	t.modelItems = make(map[string]*systray.MenuItem, len(t.models))
	for _, m := range t.models {
		item := t.modelsMenu.AddSubMenuItemCheckbox(m.Name, i18n.T("tray_model_hint"), m.Downloaded)
		t.modelItems[m.ID] = item
		go t.watchModelItem(m.ID, item)
	}

	systray.AddSeparator()

	// Выход
	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	// Обработка событий меню
	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		// Уведомления
		case <-t.notifyOn.ClickedCh:
			if t.callbacks.OnNotificationsToggle != nil {
				if t.callbacks.OnNotificationsToggle() {
					t.notifyOn.Check()
				} else {
					t.notifyOn.Uncheck()
				}
			}

		// Режим вывода
		case <-t.polished.ClickedCh:
			if t.callbacks.OnOutputToggle != nil {
				if t.callbacks.OnOutputToggle() {
					t.polished.Check()
				} else {
					t.polished.Uncheck()
				}
			}

		// Горячая клавиша
		case <-t.hotkeyBtn.ClickedCh:
			if t.callbacks.OnHotkeyClick != nil {
				t.callbacks.OnHotkeyClick()
			}

		// Выход
		case <-t.quitBtn.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
			systray.Quit()
		}
	}
}

// watchModelItem пересылает клики по пункту модели в callback.
// Состояние галочки меняет только SetModelDownloaded - скачивание
// идёт в фоне и может не удаться.
func (t *Tray) watchModelItem(id string, item *systray.MenuItem) {
	for range item.ClickedCh {
		if t.callbacks.OnModelClick != nil {
			t.callbacks.OnModelClick(id)
		}
	}
}

// SetModelDownloaded обновляет галочку модели в подменю.
func (t *Tray) SetModelDownloaded(id string, downloaded bool) {
	item, ok := t.modelItems[id]
	if !ok {
		return
	}
	if downloaded {
		item.Check()
	} else {
		item.Uncheck()
	}
}

// SetState устанавливает состояние пайплайна и обновляет иконку.
func (t *Tray) SetState(state State) {
	switch state {
	case StateIdle:
		systray.SetIcon(embedded.IconIdle)
		systray.SetTooltip("MoFA Input - " + i18n.T("tray_ready"))
		if t.status != nil {
			t.status.SetTitle(i18n.T("tray_ready"))
		}
	case StateRecording:
		systray.SetIcon(embedded.IconRecording)
		systray.SetTooltip("MoFA Input - " + i18n.T("tray_recording"))
		if t.status != nil {
			t.status.SetTitle(i18n.T("tray_recording"))
		}
	case StateProcessing:
		systray.SetIcon(embedded.IconProcessing)
		systray.SetTooltip("MoFA Input - " + i18n.T("tray_processing"))
		if t.status != nil {
			t.status.SetTitle(i18n.T("tray_processing"))
		}
	case StateError:
		systray.SetIcon(embedded.IconError)
		systray.SetTooltip("MoFA Input - " + i18n.T("tray_error"))
		if t.status != nil {
			t.status.SetTitle(i18n.T("tray_error"))
		}
	}
}

// SetOutputPolished синхронизирует чекбокс режима вывода с конфигом.
func (t *Tray) SetOutputPolished(polished bool) {
	if t.polished == nil {
		return
	}
	if polished {
		t.polished.Check()
	} else {
		t.polished.Uncheck()
	}
}

// SetNotifications синхронизирует чекбокс уведомлений с конфигом.
func (t *Tray) SetNotifications(enabled bool) {
	if t.notifyOn == nil {
		return
	}
	if enabled {
		t.notifyOn.Check()
	} else {
		t.notifyOn.Uncheck()
	}
}

func (t *Tray) onExit() {
	// Cleanup при выходе
}

// Quit закрывает системный трей.
func (t *Tray) Quit() {
	systray.Quit()
}

// RefreshUI обновляет все тексты меню на текущем языке.
func (t *Tray) RefreshUI() {
	systray.SetTooltip(i18n.T("app_tooltip"))

	if t.status != nil {
		t.status.SetTitle(i18n.T("tray_ready"))
	}
	if t.notifyOn != nil {
		t.notifyOn.SetTitle(i18n.T("tray_notifications"))
		t.notifyOn.SetTooltip(i18n.T("tray_notifications_hint"))
	}
	if t.polished != nil {
		t.polished.SetTitle(i18n.T("tray_output_polished"))
		t.polished.SetTooltip(i18n.T("tray_output_hint"))
	}
	if t.hotkeyBtn != nil {
		t.hotkeyBtn.SetTitle(i18n.T("tray_hotkey"))
		t.hotkeyBtn.SetTooltip(i18n.T("tray_hotkey_hint"))
	}
	if t.modelsMenu != nil {
		t.modelsMenu.SetTitle(i18n.T("tray_models"))
		t.modelsMenu.SetTooltip(i18n.T("tray_models_hint"))
	}
	if t.quitBtn != nil {
		t.quitBtn.SetTitle(i18n.T("tray_quit"))
		t.quitBtn.SetTooltip(i18n.T("tray_quit_hint"))
	}
}
