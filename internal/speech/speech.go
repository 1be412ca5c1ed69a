// Package speech предоставляет абстракцию для движков распознавания речи.
package speech

// SegmentFunc получает очередной распознанный сегмент текста.
// Используется для живого предпросмотра, может быть nil.
type SegmentFunc func(text string)

// Recognizer - интерфейс для движков распознавания речи.
type Recognizer interface {
	// Transcribe распознаёт речь из аудио сэмплов.
	// samples - аудио данные в формате float32, 16kHz, mono.
	// lang - язык распознавания ("ru", "en", "auto" для автоопределения).
	// onSegment вызывается по мере готовности сегментов.
	Transcribe(samples []float32, lang string, onSegment SegmentFunc) (string, error)

	// Close освобождает ресурсы движка.
	Close()

	// Name возвращает название движка (для логирования).
	Name() string
}
