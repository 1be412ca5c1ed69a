package llm

/*
#cgo CFLAGS: -I${SRCDIR}/../../third_party/llama.cpp/include -I${SRCDIR}/../../third_party/llama.cpp/ggml/include
// Note: LDFLAGS are set via Makefile's CGO_LDFLAGS to avoid ggml conflicts with whisper.cpp

#include <stdlib.h>
#include "llama.h"

// Helper function to create default model params
static struct llama_model_params get_default_model_params() {
    return llama_model_default_params();
}

// Helper function to create default context params
static struct llama_context_params get_default_context_params() {
    return llama_context_default_params();
}
*/
import "C"
import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"
)

// LlamaPolisher реализует Polisher через llama.cpp (in-process GGUF).
type LlamaPolisher struct {
	mu      sync.Mutex
	model   *C.struct_llama_model
	ctx     *C.struct_llama_context
	sampler *C.struct_llama_sampler
	nCtx    int
}

// NewLlamaPolisher загружает GGUF модель из файла.
func NewLlamaPolisher(modelPath string, nCtx int) (*LlamaPolisher, error) {
	if nCtx <= 0 {
		nCtx = 2048
	}

	cPath := C.CString(modelPath)
	defer C.free(unsafe.Pointer(cPath))

	mparams := C.get_default_model_params()

	model := C.llama_model_load_from_file(cPath, mparams)
	if model == nil {
		return nil, errors.New("failed to load model")
	}

	cparams := C.get_default_context_params()
	cparams.n_ctx = C.uint32_t(nCtx)
	cparams.n_batch = C.uint32_t(512)

	ctx := C.llama_init_from_model(model, cparams)
	if ctx == nil {
		C.llama_model_free(model)
		return nil, errors.New("failed to create context")
	}

	// Sampler chain: temp -> top_k -> top_p -> dist
	sparams := C.llama_sampler_chain_default_params()
	sampler := C.llama_sampler_chain_init(sparams)

	C.llama_sampler_chain_add(sampler, C.llama_sampler_init_temp(0.1))
	C.llama_sampler_chain_add(sampler, C.llama_sampler_init_top_k(40))
	C.llama_sampler_chain_add(sampler, C.llama_sampler_init_top_p(0.9, 1))
	C.llama_sampler_chain_add(sampler, C.llama_sampler_init_dist(C.LLAMA_DEFAULT_SEED))

	return &LlamaPolisher{
		model:   model,
		ctx:     ctx,
		sampler: sampler,
		nCtx:    nCtx,
	}, nil
}

// Name возвращает название backend'а.
func (m *LlamaPolisher) Name() string {
	return "llama"
}

// Polish исправляет текст. При ошибке генерации возвращает исходный
// текст вместе с ошибкой - вызывающий решает, откатываться ли.
func (m *LlamaPolisher) Polish(ctx context.Context, text string, keepLanguage bool, onToken TokenFunc) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	result, err := m.generate(ctx, chatPrompt(text, keepLanguage), 256, onToken)
	if err != nil {
		return text, fmt.Errorf("llm generate: %w", err)
	}

	return cleanOutput(result), nil
}

// generate генерирует продолжение промпта, отдавая токены по мере
// готовности. Прерывается при отмене контекста.
func (m *LlamaPolisher) generate(ctx context.Context, prompt string, maxTokens int, onToken TokenFunc) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.model == nil || m.ctx == nil {
		return "", errors.New("model not loaded")
	}

	if maxTokens <= 0 {
		maxTokens = 256
	}

	tokens, err := m.tokenize(prompt, true)
	if err != nil {
		return "", err
	}

	if len(tokens) == 0 {
		return "", errors.New("empty prompt")
	}

	// Clear memory (KV cache)
	memory := C.llama_get_memory(m.ctx)
	C.llama_memory_clear(memory, C.bool(true))

	batch := C.llama_batch_get_one((*C.llama_token)(&tokens[0]), C.int32_t(len(tokens)))

	if C.llama_decode(m.ctx, batch) != 0 {
		return "", errors.New("failed to decode prompt")
	}

	var result strings.Builder
	nCur := len(tokens)

	for i := 0; i < maxTokens; i++ {
		select {
		case <-ctx.Done():
			return result.String(), ctx.Err()
		default:
		}

		newToken := C.llama_sampler_sample(m.sampler, m.ctx, -1)

		if C.llama_vocab_is_eog(C.llama_model_get_vocab(m.model), newToken) {
			break
		}

		piece := m.tokenToPiece(newToken)
		result.WriteString(piece)
		if onToken != nil && piece != "" {
			onToken(piece)
		}

		batch = C.llama_batch_get_one(&newToken, 1)

		if C.llama_decode(m.ctx, batch) != 0 {
			break
		}

		nCur++
		if nCur >= m.nCtx {
			break
		}
	}

	return result.String(), nil
}

// tokenize конвертирует текст в токены.
func (m *LlamaPolisher) tokenize(text string, addBos bool) ([]C.llama_token, error) {
	vocab := C.llama_model_get_vocab(m.model)

	cText := C.CString(text)
	defer C.free(unsafe.Pointer(cText))

	nTokens := len(text) + 16
	tokens := make([]C.llama_token, nTokens)

	bos := C.bool(addBos)
	special := C.bool(true)

	n := C.llama_tokenize(vocab, cText, C.int32_t(len(text)),
		(*C.llama_token)(&tokens[0]), C.int32_t(nTokens), bos, special)

	if n < 0 {
		// Need more space
		nTokens = int(-n)
		tokens = make([]C.llama_token, nTokens)
		n = C.llama_tokenize(vocab, cText, C.int32_t(len(text)),
			(*C.llama_token)(&tokens[0]), C.int32_t(nTokens), bos, special)
	}

	if n < 0 {
		return nil, errors.New("tokenization failed")
	}

	return tokens[:n], nil
}

// tokenToPiece конвертирует токен в текст.
func (m *LlamaPolisher) tokenToPiece(token C.llama_token) string {
	vocab := C.llama_model_get_vocab(m.model)

	buf := make([]byte, 64)
	n := C.llama_token_to_piece(vocab, token, (*C.char)(unsafe.Pointer(&buf[0])), C.int32_t(len(buf)), 0, C.bool(true))

	if n < 0 {
		// Need more space
		buf = make([]byte, -n)
		n = C.llama_token_to_piece(vocab, token, (*C.char)(unsafe.Pointer(&buf[0])), C.int32_t(len(buf)), 0, C.bool(true))
	}

	if n <= 0 {
		return ""
	}

	return string(buf[:n])
}

// Close освобождает ресурсы модели.
func (m *LlamaPolisher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sampler != nil {
		C.llama_sampler_free(m.sampler)
		m.sampler = nil
	}

	if m.ctx != nil {
		C.llama_free(m.ctx)
		m.ctx = nil
	}

	if m.model != nil {
		C.llama_model_free(m.model)
		m.model = nil
	}
}
