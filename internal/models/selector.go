package models

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
)

// ErrNoModel возвращается, когда ни одна модель ступени не скачана.
// Создание сессий блокируется, пока пользователь не скачает модель.
var ErrNoModel = errors.New("нет доступной модели")

const gib = 1 << 30

// Ступени автовыбора, от большей к меньшей. Порядок фиксирован:
// selectTier выбирает стартовую ступень по памяти, дальше идёт откат
// вниз по списку до первой скачанной модели.
var (
	asrTiers = []string{"whisper-small", "whisper-base", "whisper-tiny"}
	llmTiers = []string{"llm-qwen2.5-3b", "llm-qwen2.5-1.5b", "llm-qwen2.5-0.5b"}
)

// TotalMemory возвращает объём физической памяти системы в байтах.
func TotalMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("определение объёма памяти: %w", err)
	}
	return vm.Total, nil
}

// selectTier возвращает индекс стартовой ступени для объёма памяти:
// > 16GiB - старшая, 8-16GiB - средняя, <= 8GiB - младшая.
func selectTier(totalMem uint64) int {
	switch {
	case totalMem > 16*gib:
		return 0
	case totalMem > 8*gib:
		return 1
	default:
		return 2
	}
}

// pick выбирает модель из ступеней: явное переопределение пользователя
// всегда в приоритете; иначе ступень по памяти с откатом на меньшие
// скачанные модели. ErrNoModel если не скачано ничего.
func pick(mgr *Manager, tiers []string, totalMem uint64, overrideID string) (ModelInfo, error) {
	if overrideID != "" {
		info, ok := GetModel(overrideID)
		if !ok {
			return ModelInfo{}, fmt.Errorf("неизвестная модель: %s", overrideID)
		}
		if !mgr.IsDownloaded(info) {
			return ModelInfo{}, fmt.Errorf("модель %s не скачана: %w", info.Name, ErrNoModel)
		}
		return info, nil
	}

	for i := selectTier(totalMem); i < len(tiers); i++ {
		info, ok := GetModel(tiers[i])
		if !ok {
			continue
		}
		if mgr.IsDownloaded(info) {
			return info, nil
		}
	}
	return ModelInfo{}, ErrNoModel
}

// SelectASR выбирает модель распознавания для данного объёма памяти.
func SelectASR(mgr *Manager, totalMem uint64, overrideID string) (ModelInfo, error) {
	return pick(mgr, asrTiers, totalMem, overrideID)
}

// SelectLLM выбирает модель полировки для данного объёма памяти.
func SelectLLM(mgr *Manager, totalMem uint64, overrideID string) (ModelInfo, error) {
	return pick(mgr, llmTiers, totalMem, overrideID)
}
