// Package inject предоставляет вставку текста в активное поле ввода.
//
// Вставка идёт каскадом: сначала прямая вставка через accessibility API,
// затем через буфер обмена с эмуляцией paste, в конце - посимвольный
// синтетический ввод. Используется первый сработавший способ.
package inject

import (
	"errors"
	"fmt"
	"log"
)

// Method - способ доставки текста.
type Method string

const (
	MethodAccessibility Method = "accessibility"
	MethodClipboard     Method = "clipboard-paste"
	MethodKeystroke     Method = "keystroke"
)

// ErrUnsupported означает, что способ недоступен на этой платформе
// или для него нет разрешений.
var ErrUnsupported = errors.New("способ вставки недоступен")

// Attempt - результат одной попытки вставки.
type Attempt struct {
	Method Method
	Err    error
}

// Succeeded сообщает, удалась ли попытка.
func (a Attempt) Succeeded() bool {
	return a.Err == nil
}

// tier - один уровень каскада вставки.
type tier interface {
	Method() Method
	Deliver(text string) error
}

// Chain выполняет каскадную вставку текста.
type Chain struct {
	runUI func(func())
	tiers []tier
	clip  Clipboard
}

// NewChain создаёт каскад в платформенном порядке:
// accessibility -> clipboard-paste -> keystroke.
// runUI выполняет функцию на главном потоке - все взаимодействия
// с системным вводом должны идти через него.
func NewChain(runUI func(func())) *Chain {
	clip := newSystemClipboard()
	return &Chain{
		runUI: runUI,
		clip:  clip,
		tiers: []tier{
			newAccessibilityTier(),
			newClipboardTier(clip),
			newKeystrokeTier(),
		},
	}
}

// Inject вставляет текст в активное поле, пробуя способы по очереди.
// Возвращает список всех попыток. Если не сработал ни один способ,
// текст остаётся в буфере обмена, чтобы пользователь мог вставить
// его вручную.
func (c *Chain) Inject(text string) ([]Attempt, error) {
	if text == "" {
		return nil, nil
	}

	var attempts []Attempt

	c.runUI(func() {
		for _, t := range c.tiers {
			err := t.Deliver(text)
			attempts = append(attempts, Attempt{Method: t.Method(), Err: err})
			if err == nil {
				return
			}
			if !errors.Is(err, ErrUnsupported) {
				log.Printf("Вставка через %s не удалась: %v", t.Method(), err)
			}
		}
	})

	if n := len(attempts); n > 0 && attempts[n-1].Succeeded() {
		return attempts, nil
	}

	// Все способы не сработали - оставляем текст в буфере
	if err := c.clip.Write(text); err != nil {
		log.Printf("Не удалось записать текст в буфер обмена: %v", err)
	}

	// Если ни один способ даже не доступен, дело в разрешениях или
	// платформе, а не в целевом приложении
	allUnsupported := true
	for _, a := range attempts {
		if !errors.Is(a.Err, ErrUnsupported) {
			allUnsupported = false
			break
		}
	}
	if allUnsupported {
		return attempts, fmt.Errorf("все способы вставки недоступны: %w", ErrUnsupported)
	}

	return attempts, fmt.Errorf("не удалось вставить текст ни одним из %d способов", len(attempts))
}
