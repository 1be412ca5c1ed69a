package llm

import (
	"fmt"
	"sync"

	"github.com/mofa-org/mofa-input/internal/models"
)

// Factory управляет созданием и переключением backend'ов полировки.
type Factory struct {
	manager *models.Manager
	current Polisher
	modelID string
	mu      sync.RWMutex
}

// NewFactory создаёт фабрику полировщиков.
func NewFactory(manager *models.Manager) *Factory {
	return &Factory{
		manager: manager,
	}
}

// LoadLocal загружает GGUF модель через llama.cpp и устанавливает
// её как текущий backend. Старый закрывается после подмены.
func (f *Factory) LoadLocal(info models.ModelInfo) error {
	if info.Engine != models.EngineLLM {
		return fmt.Errorf("модель не является LLM: %s", info.ID)
	}

	if !f.manager.IsDownloaded(info) {
		return fmt.Errorf("модель не скачана: %s", info.Name)
	}

	p, err := NewLlamaPolisher(f.manager.GetModelPath(info), 2048)
	if err != nil {
		return fmt.Errorf("ошибка загрузки LLM: %w", err)
	}

	f.swap(p, info.ID)
	return nil
}

// UseOllama переключает полировку на внешний сервер Ollama.
func (f *Factory) UseOllama(baseURL, model string) {
	f.swap(NewOllamaPolisher(baseURL, model), "ollama:"+model)
}

func (f *Factory) swap(p Polisher, id string) {
	f.mu.Lock()
	old := f.current
	f.current = p
	f.modelID = id
	f.mu.Unlock()

	if old != nil {
		go old.Close()
	}
}

// Current возвращает текущий полировщик (может быть nil).
func (f *Factory) Current() Polisher {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// CurrentModelID возвращает ID текущей модели полировки.
func (f *Factory) CurrentModelID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.modelID
}

// Close закрывает текущий backend.
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current != nil {
		f.current.Close()
		f.current = nil
	}
}
