// Package textproc содержит фильтры и эвристики для распознанного текста.
package textproc

import (
	"strings"
	"unicode"
)

// DefaultLatinThreshold - доля латинских символов, после которой текст
// считается латинодоминантным.
const DefaultLatinThreshold = 0.6

// Normalize схлопывает пробельные символы в одиночные пробелы
// и убирает пробелы по краям.
func Normalize(text string) string {
	var out strings.Builder
	prevSpace := false
	for _, ch := range strings.TrimSpace(text) {
		if unicode.IsSpace(ch) {
			if !prevSpace {
				out.WriteByte(' ')
			}
			prevSpace = true
			continue
		}
		out.WriteRune(ch)
		prevSpace = false
	}
	return strings.TrimSpace(out.String())
}

// canonical приводит текст к виду для сравнения с шаблонами:
// нижний регистр, без пунктуации, одиночные пробелы.
func canonical(text string) string {
	var out strings.Builder
	prevSpace := false
	for _, ch := range strings.TrimSpace(strings.ToLower(text)) {
		switch {
		case unicode.IsSpace(ch):
			if !prevSpace {
				out.WriteByte(' ')
			}
			prevSpace = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			// Пунктуация не учитывается при сравнении
		default:
			out.WriteRune(ch)
			prevSpace = false
		}
	}
	return strings.TrimSpace(out.String())
}

// IsFiller сообщает, совпадает ли транскрипт с одной из шаблонных
// фраз-паразитов (короткие междометия, заикания). Совпадение схлопывает
// результат в пустую строку - сессия завершается без вставки.
func IsFiller(text string, templates []string) bool {
	c := canonical(text)
	if c == "" {
		return true
	}
	for _, t := range templates {
		if c == canonical(t) {
			return true
		}
	}
	return false
}

// LatinDominant возвращает true, если доля латинских букв среди всех
// непробельных символов превышает threshold. Флаг передаётся в LLM как
// указание сохранить язык оригинала, чтобы английская речь не
// переводилась на основной язык пользователя.
func LatinDominant(text string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultLatinThreshold
	}

	var latin, total int
	for _, ch := range text {
		if unicode.IsSpace(ch) {
			continue
		}
		total++
		if ch < 128 && unicode.IsLetter(ch) {
			latin++
		}
	}
	if total == 0 {
		return false
	}
	return float64(latin)/float64(total) > threshold
}

// DefaultFillerTemplates - шаблоны по умолчанию. Списком управляет
// конфигурация, здесь только стартовый набор.
func DefaultFillerTemplates() []string {
	return []string{
		"um", "uh", "hmm", "mhm", "okay", "ok",
		"эм", "ммм", "ага", "угу", "так",
		"嗯", "啊", "哦", "呃",
	}
}
