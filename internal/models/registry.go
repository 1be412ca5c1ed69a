// Package models управляет моделями распознавания и полировки.
package models

// Engine тип движка.
type Engine string

const (
	EngineWhisper Engine = "whisper"
	EngineVosk    Engine = "vosk"
	EngineLLM     Engine = "llm"
)

// ModelInfo информация о модели.
type ModelInfo struct {
	ID       string // Уникальный идентификатор: "whisper-base"
	Engine   Engine // Движок: whisper, vosk или llm
	Name     string // Отображаемое имя: "Whisper Base"
	Filename string // Имя файла/директории в каталоге моделей
	URL      string // URL для скачивания
	Size     int64  // Размер в байтах (для прогресса)
	IsZip    bool   // Нужно ли распаковывать
}

// Registry все доступные модели.
var Registry = []ModelInfo{
	// Whisper - ступени автовыбора по памяти (от большей к меньшей)
	{
		ID:       "whisper-small",
		Engine:   EngineWhisper,
		Name:     "Whisper Small",
		Filename: "ggml-small.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		Size:     466 * 1024 * 1024,
	},
	{
		ID:       "whisper-base",
		Engine:   EngineWhisper,
		Name:     "Whisper Base",
		Filename: "ggml-base.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
		Size:     142 * 1024 * 1024,
	},
	{
		ID:       "whisper-tiny",
		Engine:   EngineWhisper,
		Name:     "Whisper Tiny",
		Filename: "ggml-tiny.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
		Size:     75 * 1024 * 1024,
	},
	// Whisper - вне автовыбора, только явное переопределение
	{
		ID:       "whisper-turbo",
		Engine:   EngineWhisper,
		Name:     "Whisper Large v3 Turbo",
		Filename: "ggml-large-v3-turbo-q5_0.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3-turbo-q5_0.bin",
		Size:     574 * 1024 * 1024,
	},
	// Vosk - альтернативный движок, только явное переопределение
	{
		ID:       "vosk-ru-small",
		Engine:   EngineVosk,
		Name:     "Vosk Russian Small",
		Filename: "vosk-model-small-ru-0.22",
		URL:      "https://alphacephei.com/vosk/models/vosk-model-small-ru-0.22.zip",
		Size:     45 * 1024 * 1024,
		IsZip:    true,
	},
	// LLM - ступени автовыбора по памяти
	{
		ID:       "llm-qwen2.5-3b",
		Engine:   EngineLLM,
		Name:     "Qwen2.5 3B",
		Filename: "qwen2.5-3b-instruct-q4_k_m.gguf",
		URL:      "https://huggingface.co/Qwen/Qwen2.5-3B-Instruct-GGUF/resolve/main/qwen2.5-3b-instruct-q4_k_m.gguf",
		Size:     1900 * 1024 * 1024,
	},
	{
		ID:       "llm-qwen2.5-1.5b",
		Engine:   EngineLLM,
		Name:     "Qwen2.5 1.5B",
		Filename: "qwen2.5-1.5b-instruct-q4_k_m.gguf",
		URL:      "https://huggingface.co/Qwen/Qwen2.5-1.5B-Instruct-GGUF/resolve/main/qwen2.5-1.5b-instruct-q4_k_m.gguf",
		Size:     987 * 1024 * 1024,
	},
	{
		ID:       "llm-qwen2.5-0.5b",
		Engine:   EngineLLM,
		Name:     "Qwen2.5 0.5B",
		Filename: "qwen2.5-0.5b-instruct-q4_k_m.gguf",
		URL:      "https://huggingface.co/Qwen/Qwen2.5-0.5B-Instruct-GGUF/resolve/main/qwen2.5-0.5b-instruct-q4_k_m.gguf",
		Size:     386 * 1024 * 1024,
	},
}

// GetModel возвращает модель по ID.
func GetModel(id string) (ModelInfo, bool) {
	for _, m := range Registry {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// GetModelsByEngine возвращает модели для указанного движка.
func GetModelsByEngine(engine Engine) []ModelInfo {
	var result []ModelInfo
	for _, m := range Registry {
		if m.Engine == engine {
			result = append(result, m)
		}
	}
	return result
}

// EngineName возвращает отображаемое имя движка.
func EngineName(e Engine) string {
	switch e {
	case EngineWhisper:
		return "Whisper"
	case EngineVosk:
		return "Vosk"
	case EngineLLM:
		return "LLM"
	default:
		return string(e)
	}
}
