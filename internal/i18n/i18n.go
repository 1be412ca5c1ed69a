// Package i18n provides internationalization support.
package i18n

import "sync"

// Language represents a UI language.
type Language string

const (
	RU Language = "ru"
	EN Language = "en"
)

var (
	mu      sync.RWMutex
	current = EN // Default language
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	RU: {
		// App
		"app_name":    "MoFA Input",
		"app_tooltip": "MoFA Input - голосовой ввод",

		// Tray menu
		"tray_ready":              "Готов к работе",
		"tray_recording":          "Запись...",
		"tray_processing":         "Обработка...",
		"tray_error":              "Ошибка",
		"tray_language":           "Язык",
		"tray_lang_select":        "Выбор языка распознавания",
		"tray_lang_ru":            "Русский",
		"tray_lang_en":            "English",
		"tray_lang_auto":          "Авто",
		"tray_notifications":      "Уведомления",
		"tray_notifications_hint": "Показывать уведомления",
		"tray_output_polished":    "Вставлять исправленный текст",
		"tray_output_raw":         "Вставлять сырой текст",
		"tray_output_hint":        "Что вставлять: результат полировки или транскрипцию",
		"tray_hotkey":             "Горячая клавиша...",
		"tray_hotkey_hint":        "Изменить push-to-talk комбинацию",
		"tray_models":             "Модели",
		"tray_models_hint":        "Скачивание и удаление моделей",
		"tray_model_hint":         "Клик: скачать или удалить",
		"tray_quit":               "Выход",
		"tray_quit_hint":          "Закрыть приложение",

		// Notifications
		"notify_recording":       "Запись...",
		"notify_recording_hint":  "Говорите, отпустите клавишу для вставки",
		"notify_done":            "Готово",
		"notify_empty":           "Речь не распознана",
		"notify_empty_hint":      "Тишина или слишком короткая запись",
		"notify_error":           "Ошибка",
		"notify_ready":           "MoFA Input готов к работе",
		"notify_clipboard_saved": "Текст скопирован в буфер обмена",
		"notify_download":        "Загрузка модели",
		"notify_download_done":   "Модель скачана",
		"notify_model_deleted":   "Модель удалена",

		// Overlay window
		"overlay_recording":    "Запись",
		"overlay_transcribing": "Распознавание речи...",
		"overlay_polishing":    "Коррекция текста...",
		"overlay_result":       "Результат",
		"overlay_error":        "Ошибка",

		// Dialogs
		"dialog_hotkey_title":  "Горячая клавиша",
		"dialog_hotkey_prompt": "Выберите push-to-talk комбинацию",
		"dialog_inject_failed": "Не удалось вставить текст. Он скопирован в буфер обмена - вставьте вручную (Ctrl+V / Cmd+V).",
		"dialog_permission":    "Нужно разрешение Accessibility: Системные настройки -> Конфиденциальность -> Универсальный доступ.",

		// Errors
		"error_model_not_loaded":     "Модель распознавания не загружена",
		"error_model_not_downloaded": "Нет скачанных моделей распознавания",
		"error_recording":            "Ошибка записи с микрофона",
		"error_recognition":          "Ошибка распознавания",
		"error_polish":               "Ошибка коррекции текста",
		"error_injection":            "Ошибка вставки текста",
		"error_hotkey_register":      "Не удалось зарегистрировать горячую клавишу",
		"error_model_load":           "Не удалось загрузить модель",
		"error_model_download":       "Не удалось скачать модель",
		"error_model_in_use":         "Модель сейчас используется",

		// Success messages
		"success_model_loaded": "Модель загружена",
	},

	EN: {
		// App
		"app_name":    "MoFA Input",
		"app_tooltip": "MoFA Input - voice input",

		// Tray menu
		"tray_ready":              "Ready",
		"tray_recording":          "Recording...",
		"tray_processing":         "Processing...",
		"tray_error":              "Error",
		"tray_language":           "Language",
		"tray_lang_select":        "Select recognition language",
		"tray_lang_ru":            "Русский",
		"tray_lang_en":            "English",
		"tray_lang_auto":          "Auto",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show notifications",
		"tray_output_polished":    "Insert polished text",
		"tray_output_raw":         "Insert raw text",
		"tray_output_hint":        "What to insert: polished result or raw transcript",
		"tray_hotkey":             "Hotkey...",
		"tray_hotkey_hint":        "Change push-to-talk combination",
		"tray_models":             "Models",
		"tray_models_hint":        "Download and delete models",
		"tray_model_hint":         "Click to download or delete",
		"tray_quit":               "Quit",
		"tray_quit_hint":          "Close application",

		// Notifications
		"notify_recording":       "Recording...",
		"notify_recording_hint":  "Speak, release the key to insert",
		"notify_done":            "Done",
		"notify_empty":           "No speech recognized",
		"notify_empty_hint":      "Silence or recording too short",
		"notify_error":           "Error",
		"notify_ready":           "MoFA Input is ready",
		"notify_clipboard_saved": "Text copied to clipboard",
		"notify_download":        "Downloading model",
		"notify_download_done":   "Model downloaded",
		"notify_model_deleted":   "Model deleted",

		// Overlay window
		"overlay_recording":    "Recording",
		"overlay_transcribing": "Speech recognition...",
		"overlay_polishing":    "Text correction...",
		"overlay_result":       "Result",
		"overlay_error":        "Error",

		// Dialogs
		"dialog_hotkey_title":  "Hotkey",
		"dialog_hotkey_prompt": "Pick a push-to-talk combination",
		"dialog_inject_failed": "Could not insert text. It was copied to the clipboard - paste it manually (Ctrl+V / Cmd+V).",
		"dialog_permission":    "Accessibility permission required: System Settings -> Privacy -> Accessibility.",

		// Errors
		"error_model_not_loaded":     "Recognition model not loaded",
		"error_model_not_downloaded": "No downloaded recognition models",
		"error_recording":            "Microphone recording error",
		"error_recognition":          "Recognition error",
		"error_polish":               "Text correction error",
		"error_injection":            "Text insertion error",
		"error_hotkey_register":      "Could not register hotkey",
		"error_model_load":           "Could not load model",
		"error_model_download":       "Could not download model",
		"error_model_in_use":         "Model is currently in use",

		// Success messages
		"success_model_loaded": "Model loaded",
	},
}

// T returns the translation for the given key.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	// Fallback to key itself
	return key
}

// SetLanguage sets the current UI language.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	current = lang
}

// GetLanguage returns the current UI language.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// AvailableLanguages returns list of supported languages.
func AvailableLanguages() []Language {
	return []Language{RU, EN}
}

// LanguageName returns display name for a language.
func LanguageName(lang Language) string {
	switch lang {
	case RU:
		return "Русский"
	case EN:
		return "English"
	default:
		return string(lang)
	}
}
