package speech

import (
	"fmt"
	"sync"

	"github.com/mofa-org/mofa-input/internal/models"
)

// Factory управляет созданием и переключением распознавателей.
type Factory struct {
	manager *models.Manager
	current Recognizer
	modelID string
	mu      sync.RWMutex
}

// NewFactory создаёт фабрику распознавателей.
func NewFactory(manager *models.Manager) *Factory {
	return &Factory{
		manager: manager,
	}
}

// Create создаёт распознаватель для указанной модели.
func (f *Factory) Create(info models.ModelInfo) (Recognizer, error) {
	if !f.manager.IsDownloaded(info) {
		return nil, fmt.Errorf("модель не скачана: %s", info.Name)
	}

	modelPath := f.manager.GetModelPath(info)

	var rec Recognizer
	var err error

	switch info.Engine {
	case models.EngineWhisper:
		rec, err = NewWhisperFromFile(modelPath)
	case models.EngineVosk:
		rec, err = NewVosk(modelPath)
	default:
		return nil, fmt.Errorf("неизвестный движок: %s", info.Engine)
	}

	if err != nil {
		return nil, fmt.Errorf("ошибка создания распознавателя: %w", err)
	}

	return rec, nil
}

// Load загружает модель и устанавливает её как текущую.
// Старый распознаватель закрывается после подмены (hot-swap).
func (f *Factory) Load(info models.ModelInfo) error {
	rec, err := f.Create(info)
	if err != nil {
		return err
	}

	f.mu.Lock()
	old := f.current
	f.current = rec
	f.modelID = info.ID
	f.mu.Unlock()

	if old != nil {
		go old.Close()
	}

	return nil
}

// Current возвращает текущий распознаватель (thread-safe).
func (f *Factory) Current() Recognizer {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// CurrentModelID возвращает ID текущей модели.
func (f *Factory) CurrentModelID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.modelID
}

// IsLoaded проверяет, загружена ли модель.
func (f *Factory) IsLoaded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current != nil
}

// Close закрывает текущий распознаватель.
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.current != nil {
		f.current.Close()
		f.current = nil
	}
}
