// Package config предоставляет конфигурацию приложения с сохранением в файл.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/mofa-org/mofa-input/internal/textproc"
)

// Modifier представляет модификатор клавиши.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super" // Win/Cmd
)

// Key представляет клавишу.
type Key string

const (
	KeySpace  Key = "space"
	KeyReturn Key = "return"
	KeyTab    Key = "tab"
	KeyA      Key = "a"
	KeyB      Key = "b"
	KeyC      Key = "c"
	KeyD      Key = "d"
	KeyE      Key = "e"
	KeyF      Key = "f"
	KeyG      Key = "g"
	KeyH      Key = "h"
	KeyI      Key = "i"
	KeyJ      Key = "j"
	KeyK      Key = "k"
	KeyL      Key = "l"
	KeyM      Key = "m"
	KeyN      Key = "n"
	KeyO      Key = "o"
	KeyP      Key = "p"
	KeyQ      Key = "q"
	KeyR      Key = "r"
	KeyS      Key = "s"
	KeyT      Key = "t"
	KeyU      Key = "u"
	KeyV      Key = "v"
	KeyW      Key = "w"
	KeyX      Key = "x"
	KeyY      Key = "y"
	KeyZ      Key = "z"
	KeyF1     Key = "f1"
	KeyF2     Key = "f2"
	KeyF3     Key = "f3"
	KeyF4     Key = "f4"
	KeyF5     Key = "f5"
	KeyF6     Key = "f6"
	KeyF7     Key = "f7"
	KeyF8     Key = "f8"
	KeyF9     Key = "f9"
	KeyF10    Key = "f10"
	KeyF11    Key = "f11"
	KeyF12    Key = "f12"
)

// HotkeyConfig хранит настройки горячей клавиши.
type HotkeyConfig struct {
	Modifiers []Modifier `json:"modifiers"`
	Key       Key        `json:"key"`
}

// String возвращает строковое представление горячей клавиши.
func (h HotkeyConfig) String() string {
	result := ""
	for _, m := range h.Modifiers {
		if result != "" {
			result += "+"
		}
		result += string(m)
	}
	if result != "" {
		result += "+"
	}
	result += string(h.Key)
	return result
}

// OutputPreference определяет, что вставляется в приложение:
// отполированный LLM текст или сырой транскрипт.
type OutputPreference string

const (
	OutputPolished OutputPreference = "polished"
	OutputRaw      OutputPreference = "raw"
)

// PolishConfig хранит настройки LLM полировки текста.
type PolishConfig struct {
	ModelID      string `json:"model_id,omitempty"`   // Переопределение модели (пусто = автовыбор по памяти)
	AbortOnError bool   `json:"abort_on_error"`       // true: ошибка LLM завершает сессию вместо отката на транскрипт
	OllamaURL    string `json:"ollama_url,omitempty"` // Резервный backend, если локальный GGUF не скачан
	OllamaModel  string `json:"ollama_model,omitempty"`
}

// FilterConfig хранит пороги фильтров тишины и шаблонных фраз.
type FilterConfig struct {
	SilenceRMS      float64  `json:"silence_rms"`      // Порог RMS, ниже - тишина
	LatinThreshold  float64  `json:"latin_threshold"`  // Порог латинодоминантности
	FillerTemplates []string `json:"filler_templates"` // Фразы-паразиты, схлопываемые в пустой результат
}

// DefaultSilenceRMS - порог тишины по умолчанию.
const DefaultSilenceRMS = 0.0015

// configData структура для сериализации. Notifications - указатель,
// чтобы отличать явное false от отсутствующего ключа.
type configData struct {
	Language      string           `json:"language"`
	UILanguage    string           `json:"ui_language,omitempty"`
	Notifications *bool            `json:"notifications"`
	Hotkey        HotkeyConfig     `json:"hotkey"`
	Output        OutputPreference `json:"output_preference"`
	ASRModelID    string           `json:"asr_model_id,omitempty"` // Переопределение модели распознавания
	Polish        PolishConfig     `json:"polish,omitempty"`
	Filter        FilterConfig     `json:"filter"`
}

// Config хранит настройки приложения.
type Config struct {
	mu            sync.RWMutex
	language      string
	uiLanguage    string
	notifications bool
	hotkey        HotkeyConfig
	output        OutputPreference
	asrModelID    string
	polish        PolishConfig
	filter        FilterConfig
	configPath    string
}

func defaults() *Config {
	return &Config{
		language:      "auto",
		uiLanguage:    "en",
		notifications: true,
		hotkey: HotkeyConfig{
			Modifiers: []Modifier{ModCtrl, ModShift},
			Key:       KeySpace,
		},
		output: OutputPolished,
		filter: FilterConfig{
			SilenceRMS:      DefaultSilenceRMS,
			LatinThreshold:  textproc.DefaultLatinThreshold,
			FillerTemplates: textproc.DefaultFillerTemplates(),
		},
	}
}

// New создаёт конфигурацию, загружая config.json рядом с бинарником
// или используя настройки по умолчанию.
func New() *Config {
	path := ""
	execPath, err := os.Executable()
	if err == nil {
		execPath, err = filepath.EvalSymlinks(execPath)
		if err == nil {
			path = filepath.Join(filepath.Dir(execPath), "config.json")
		}
	}
	return NewFromFile(path)
}

// NewFromFile создаёт конфигурацию с указанным путём к файлу.
func NewFromFile(path string) *Config {
	c := defaults()
	c.configPath = path
	c.load()
	return c
}

// load загружает конфигурацию из файла.
func (c *Config) load() {
	if c.configPath == "" {
		return
	}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return // Файл не существует, используем defaults
	}

	var cfg configData
	if err := json.Unmarshal(data, &cfg); err != nil {
		return
	}

	if cfg.Language != "" {
		c.language = cfg.Language
	}
	if cfg.UILanguage != "" {
		c.uiLanguage = cfg.UILanguage
	}
	if cfg.Notifications != nil {
		c.notifications = *cfg.Notifications
	}
	if cfg.Hotkey.Key != "" {
		c.hotkey = cfg.Hotkey
	}
	if cfg.Output == OutputPolished || cfg.Output == OutputRaw {
		c.output = cfg.Output
	}
	c.asrModelID = cfg.ASRModelID
	c.polish = cfg.Polish
	if cfg.Filter.SilenceRMS > 0 {
		c.filter.SilenceRMS = cfg.Filter.SilenceRMS
	}
	if cfg.Filter.LatinThreshold > 0 {
		c.filter.LatinThreshold = cfg.Filter.LatinThreshold
	}
	if cfg.Filter.FillerTemplates != nil {
		c.filter.FillerTemplates = cfg.Filter.FillerTemplates
	}
}

// save сохраняет конфигурацию в файл.
func (c *Config) save() {
	if c.configPath == "" {
		return
	}

	notifications := c.notifications
	cfg := configData{
		Language:      c.language,
		UILanguage:    c.uiLanguage,
		Notifications: &notifications,
		Hotkey:        c.hotkey,
		Output:        c.output,
		ASRModelID:    c.asrModelID,
		Polish:        c.polish,
		Filter:        c.filter,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return
	}

	os.WriteFile(c.configPath, data, 0644)
}

// Language возвращает текущий язык распознавания.
func (c *Config) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.language
}

// SetLanguage устанавливает язык распознавания.
func (c *Config) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = lang
	c.save()
}

// UILanguage возвращает язык интерфейса.
func (c *Config) UILanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uiLanguage
}

// NotificationsEnabled возвращает true если уведомления включены.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifications
}

// ToggleNotifications переключает состояние уведомлений.
func (c *Config) ToggleNotifications() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = !c.notifications
	c.save()
	return c.notifications
}

// Hotkey возвращает текущую горячую клавишу.
func (c *Config) Hotkey() HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hotkey
}

// SetHotkey устанавливает горячую клавишу.
func (c *Config) SetHotkey(hk HotkeyConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hotkey = hk
	c.save()
}

// Output возвращает предпочтение вывода.
func (c *Config) Output() OutputPreference {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.output
}

// SetOutput устанавливает предпочтение вывода.
func (c *Config) SetOutput(p OutputPreference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output = p
	c.save()
}

// ToggleOutput переключает polished/raw и возвращает новое значение.
func (c *Config) ToggleOutput() OutputPreference {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.output == OutputPolished {
		c.output = OutputRaw
	} else {
		c.output = OutputPolished
	}
	c.save()
	return c.output
}

// ASRModelID возвращает переопределение модели распознавания
// (пустая строка - автовыбор по памяти).
func (c *Config) ASRModelID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.asrModelID
}

// SetASRModelID устанавливает переопределение модели распознавания.
func (c *Config) SetASRModelID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asrModelID = id
	c.save()
}

// Polish возвращает настройки полировки.
func (c *Config) Polish() PolishConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.polish
}

// SetPolish устанавливает настройки полировки.
func (c *Config) SetPolish(p PolishConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polish = p
	c.save()
}

// Filter возвращает настройки фильтров.
func (c *Config) Filter() FilterConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f := c.filter
	f.FillerTemplates = append([]string(nil), c.filter.FillerTemplates...)
	return f
}

// AvailableModifiers возвращает список доступных модификаторов.
func AvailableModifiers() []Modifier {
	return []Modifier{ModCtrl, ModShift, ModAlt, ModSuper}
}

// AvailableKeys возвращает список доступных клавиш.
func AvailableKeys() []Key {
	return []Key{
		KeySpace, KeyReturn, KeyTab,
		KeyA, KeyB, KeyC, KeyD, KeyE, KeyF, KeyG, KeyH, KeyI, KeyJ, KeyK, KeyL, KeyM,
		KeyN, KeyO, KeyP, KeyQ, KeyR, KeyS, KeyT, KeyU, KeyV, KeyW, KeyX, KeyY, KeyZ,
		KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12,
	}
}
