package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mofa-org/mofa-input/internal/audio"
	"github.com/mofa-org/mofa-input/internal/config"
	"github.com/mofa-org/mofa-input/internal/inject"
	"github.com/mofa-org/mofa-input/internal/llm"
	"github.com/mofa-org/mofa-input/internal/speech"
	"github.com/mofa-org/mofa-input/internal/textproc"
)

// DefaultPolishTimeout - максимальное время ожидания полировки.
const DefaultPolishTimeout = 30 * time.Second

// ErrNoRecognizer возвращается при нажатии хоткея без загруженной модели.
var ErrNoRecognizer = errors.New("модель распознавания не загружена")

// Recorder - источник аудио сэмплов.
type Recorder interface {
	Start() error
	Stop() []float32
	IsRecording() bool
}

// Injector доставляет текст в активное поле ввода.
type Injector interface {
	Inject(text string) ([]inject.Attempt, error)
}

// Params - снимок настроек, читаемый в начале каждой сессии.
type Params struct {
	Language           string
	Output             config.OutputPreference
	SilenceRMS         float64
	FillerTemplates    []string
	LatinThreshold     float64
	PolishAbortOnError bool
	PolishTimeout      time.Duration
}

// Controller управляет состоянием пайплайна и прогоняет сессии.
// Распознаватель и полировщик берутся через провайдеры при каждой
// сессии - модели могут подменяться на лету.
type Controller struct {
	mu    sync.Mutex
	state State

	recorder   Recorder
	recognizer func() speech.Recognizer
	polisher   func() llm.Polisher
	injector   Injector
	sink       StatusSink
	params     func() Params
}

// NewController создаёт контроллер. polisher может возвращать nil -
// тогда полировка пропускается и вставляется сырой текст.
func NewController(
	recorder Recorder,
	recognizer func() speech.Recognizer,
	polisher func() llm.Polisher,
	injector Injector,
	sink StatusSink,
	params func() Params,
) *Controller {
	return &Controller{
		state:      StateIdle,
		recorder:   recorder,
		recognizer: recognizer,
		polisher:   polisher,
		injector:   injector,
		sink:       sink,
		params:     params,
	}
}

// State возвращает текущее состояние пайплайна.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HandlePress обрабатывает нажатие хоткея. Если пайплайн занят
// предыдущей сессией, нажатие отбрасывается.
func (c *Controller) HandlePress() {
	c.mu.Lock()
	if c.state != StateIdle {
		log.Printf("Нажатие проигнорировано: пайплайн в состоянии %s", c.state)
		c.mu.Unlock()
		return
	}

	if c.recognizer() == nil {
		c.mu.Unlock()
		c.sink.Error(KindModelUnavailable, ErrNoRecognizer)
		return
	}

	if err := c.recorder.Start(); err != nil {
		c.mu.Unlock()
		c.sink.Error(KindCapture, err)
		return
	}

	c.state = StateRecording
	c.mu.Unlock()

	c.sink.Recording()
}

// HandleRelease обрабатывает отпускание хоткея: останавливает запись
// и запускает обработку в фоне. Отпускание без активной записи
// игнорируется.
func (c *Controller) HandleRelease() {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return
	}

	samples := c.recorder.Stop()
	c.state = StateTranscribing
	c.mu.Unlock()

	sess := newSession()
	go c.run(sess, samples)
}

// run прогоняет сессию от сэмплов до вставки текста.
func (c *Controller) run(sess *Session, samples []float32) {
	p := c.params()

	// Фильтры до распознавания: слишком короткая запись и тишина
	if len(samples) < audio.MinSamples {
		log.Printf("Сессия %s: запись короче %dms, отброшена",
			sess.ID, audio.MinSamples*1000/audio.SampleRate)
		c.discard()
		return
	}

	if rms := audio.RMS(samples); rms < p.SilenceRMS {
		log.Printf("Сессия %s: тишина (RMS %.5f < %.5f)", sess.ID, rms, p.SilenceRMS)
		c.discard()
		return
	}

	rec := c.recognizer()
	if rec == nil {
		c.fail(KindModelUnavailable, ErrNoRecognizer)
		return
	}

	c.sink.Transcribing("")

	var preview strings.Builder
	text, err := rec.Transcribe(samples, p.Language, func(segment string) {
		if preview.Len() > 0 {
			preview.WriteString(" ")
		}
		preview.WriteString(segment)
		c.sink.Transcribing(preview.String())
	})
	if err != nil {
		c.fail(KindRecognition, err)
		return
	}

	raw := textproc.Normalize(text)
	if raw == "" {
		log.Printf("Сессия %s: пустая транскрипция", sess.ID)
		c.discard()
		return
	}

	if textproc.IsFiller(raw, p.FillerTemplates) {
		log.Printf("Сессия %s: фраза-паразит %q, отброшена", sess.ID, raw)
		c.discard()
		return
	}

	sess.RawText = raw

	final := raw
	if p.Output == config.OutputPolished {
		if pol := c.polisher(); pol != nil {
			polished, err := c.polish(pol, raw, p)
			if err != nil {
				if p.PolishAbortOnError {
					c.fail(KindPolish, err)
					return
				}
				log.Printf("Сессия %s: полировка не удалась, вставляю сырой текст: %v",
					sess.ID, err)
			} else if polished != "" {
				sess.PolishedText = polished
				final = polished
			}
		}
	}

	c.setState(StateInjecting)
	c.sink.Injecting()

	attempts, err := c.injector.Inject(final)
	sess.Attempts = attempts
	if err != nil {
		// Все способы недоступны - не хватает разрешений на ввод
		if errors.Is(err, inject.ErrUnsupported) {
			c.fail(KindPermission, err)
			return
		}
		c.fail(KindInjection, err)
		return
	}

	log.Printf("Сессия %s: вставлено %d символов за %v",
		sess.ID, len([]rune(final)), time.Since(sess.StartedAt).Round(time.Millisecond))

	c.setState(StateIdle)
	c.sink.Done(final, attempts)
}

// polish прогоняет текст через LLM. Пустой или шаблонный результат
// считается неудачей полировки - возвращается пустая строка без
// ошибки, и вызывающий оставляет сырой текст.
func (c *Controller) polish(pol llm.Polisher, raw string, p Params) (string, error) {
	c.setState(StatePolishing)
	c.sink.Polishing()

	timeout := p.PolishTimeout
	if timeout <= 0 {
		timeout = DefaultPolishTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	keepLang := textproc.LatinDominant(raw, p.LatinThreshold)

	out, err := pol.Polish(ctx, raw, keepLang, func(token string) {
		c.sink.PolishToken(token)
	})
	if err != nil {
		return "", err
	}

	polished := textproc.Normalize(out)
	if polished == "" || textproc.IsFiller(polished, p.FillerTemplates) {
		log.Printf("Полировка вернула непригодный результат %q", polished)
		return "", nil
	}

	return polished, nil
}

// discard завершает сессию без текста.
func (c *Controller) discard() {
	c.setState(StateIdle)
	c.sink.NoSpeech()
}

// fail переводит пайплайн в Error, сообщает об ошибке и возвращается
// в Idle. Нажатия во время показа ошибки отбрасываются.
func (c *Controller) fail(kind ErrorKind, err error) {
	c.setState(StateError)
	c.sink.Error(kind, err)
	c.setState(StateIdle)
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
