// Package llm предоставляет полировку распознанного текста локальными LLM.
package llm

import (
	"context"
	"strings"
)

// TokenFunc получает очередной сгенерированный фрагмент текста.
// Используется для живого предпросмотра, может быть nil.
type TokenFunc func(token string)

// Polisher - интерфейс backend'а полировки текста.
type Polisher interface {
	// Polish исправляет ошибки распознавания и расставляет пунктуацию.
	// keepLanguage=true означает, что текст латинодоминантный и его
	// язык нужно сохранить, не нормализуя к основному языку пользователя.
	// onToken вызывается по мере генерации.
	Polish(ctx context.Context, text string, keepLanguage bool, onToken TokenFunc) (string, error)

	// Close освобождает ресурсы backend'а.
	Close()

	// Name возвращает название backend'а (для логирования).
	Name() string
}

// systemPrompt возвращает системную инструкцию полировки.
func systemPrompt(keepLanguage bool) string {
	var b strings.Builder
	b.WriteString("Ты помощник для исправления ошибок распознавания речи. ")
	b.WriteString("Исправь ошибки, убери повторы и заикания, расставь знаки препинания. ")
	b.WriteString("Имена, числа, код и URL оставляй как есть. ")
	if keepLanguage {
		b.WriteString("Текст преимущественно на латинице - сохрани язык оригинала, не переводи. ")
	}
	b.WriteString("Верни только исправленный текст без пояснений.")
	return b.String()
}

// chatPrompt собирает промпт в формате chat-шаблона Qwen
// для прямой генерации через llama.cpp.
func chatPrompt(text string, keepLanguage bool) string {
	var b strings.Builder
	b.WriteString("<|im_start|>system\n")
	b.WriteString(systemPrompt(keepLanguage))
	b.WriteString("<|im_end|>\n<|im_start|>user\n")
	b.WriteString(text)
	b.WriteString("<|im_end|>\n<|im_start|>assistant\n")
	return b.String()
}

// cleanOutput убирает хвостовые теги шаблона и лишние пробелы.
func cleanOutput(s string) string {
	out := strings.TrimSpace(s)
	if idx := strings.Index(out, "<|im_end|>"); idx != -1 {
		out = strings.TrimSpace(out[:idx])
	}
	return out
}
