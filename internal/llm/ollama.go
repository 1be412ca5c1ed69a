package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaURL - адрес локального Ollama сервера по умолчанию.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaPolisher реализует Polisher через HTTP API локального Ollama.
type OllamaPolisher struct {
	baseURL string
	model   string
	client  *http.Client
}

// generateRequest тело запроса /api/generate.
type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	System  string                 `json:"system,omitempty"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// generateResponse одна строка стримингового ответа.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaPolisher создаёт клиент Ollama. Пустые аргументы
// заменяются значениями по умолчанию.
func NewOllamaPolisher(baseURL, model string) *OllamaPolisher {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = "qwen2.5:1.5b"
	}

	return &OllamaPolisher{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Name возвращает название backend'а.
func (o *OllamaPolisher) Name() string {
	return "ollama"
}

// IsAvailable проверяет, отвечает ли сервер Ollama.
func (o *OllamaPolisher) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ListModels возвращает имена моделей, доступных на сервере.
func (o *OllamaPolisher) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama вернул статус %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Polish исправляет текст через /api/generate со стримингом.
// При ошибке возвращает исходный текст вместе с ошибкой.
func (o *OllamaPolisher) Polish(ctx context.Context, text string, keepLanguage bool, onToken TokenFunc) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	body, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: text,
		System: systemPrompt(keepLanguage),
		Stream: true,
		Options: map[string]interface{}{
			"temperature": 0.1,
			"num_predict": 256,
		},
	})
	if err != nil {
		return text, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return text, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return text, fmt.Errorf("запрос к ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return text, fmt.Errorf("ollama вернул статус %d", resp.StatusCode)
	}

	// Ответ приходит построчно: по одному JSON объекту на строку
	var result strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return text, fmt.Errorf("разбор ответа ollama: %w", err)
		}

		if chunk.Error != "" {
			return text, fmt.Errorf("ollama: %s", chunk.Error)
		}

		if chunk.Response != "" {
			result.WriteString(chunk.Response)
			if onToken != nil {
				onToken(chunk.Response)
			}
		}

		if chunk.Done {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return text, fmt.Errorf("чтение ответа ollama: %w", err)
	}

	return cleanOutput(result.String()), nil
}

// Close для HTTP клиента ничего не освобождает.
func (o *OllamaPolisher) Close() {}
