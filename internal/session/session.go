// Package session реализует жизненный цикл голосовой сессии:
// запись -> распознавание -> полировка -> вставка.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/mofa-org/mofa-input/internal/inject"
)

// State - состояние пайплайна. Одновременно активна максимум
// одна сессия: нажатия хоткея в любом состоянии кроме Idle
// отбрасываются, очереди нет.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StatePolishing
	StateInjecting
	StateError
)

// String возвращает имя состояния для логов.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StatePolishing:
		return "polishing"
	case StateInjecting:
		return "injecting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorKind классифицирует этап, на котором сессия завершилась ошибкой.
type ErrorKind string

const (
	KindCapture          ErrorKind = "capture"
	KindRecognition      ErrorKind = "recognition"
	KindPolish           ErrorKind = "polish"
	KindInjection        ErrorKind = "injection"
	KindPermission       ErrorKind = "permission"
	KindModelUnavailable ErrorKind = "model-unavailable"
)

// Session хранит данные одного прохода пайплайна.
type Session struct {
	ID           uuid.UUID
	StartedAt    time.Time
	RawText      string
	PolishedText string
	Attempts     []inject.Attempt
}

func newSession() *Session {
	return &Session{
		ID:        uuid.New(),
		StartedAt: time.Now(),
	}
}

// StatusSink получает события пайплайна. Реализация отвечает за
// отображение (трей, оверлей, уведомления). Методы могут вызываться
// из фоновой горутины.
type StatusSink interface {
	// Recording - началась запись.
	Recording()

	// Transcribing - идёт распознавание. preview - накопленный текст
	// сегментов, пустая строка в начале.
	Transcribing(preview string)

	// Polishing - началась полировка.
	Polishing()

	// PolishToken - очередной фрагмент полированного текста.
	PolishToken(token string)

	// Injecting - началась вставка текста.
	Injecting()

	// Done - сессия завершена, text вставлен указанным в attempts способом.
	Done(text string, attempts []inject.Attempt)

	// NoSpeech - запись отброшена: тишина, слишком короткая
	// или шаблонная фраза-паразит.
	NoSpeech()

	// Error - сессия завершилась ошибкой на этапе kind.
	Error(kind ErrorKind, err error)
}
