package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mofa-org/mofa-input/internal/audio"
	"github.com/mofa-org/mofa-input/internal/config"
	"github.com/mofa-org/mofa-input/internal/inject"
	"github.com/mofa-org/mofa-input/internal/llm"
	"github.com/mofa-org/mofa-input/internal/speech"
	"github.com/mofa-org/mofa-input/internal/textproc"
)

// fakeRecorder отдаёт заранее заданные сэмплы.
type fakeRecorder struct {
	mu        sync.Mutex
	samples   []float32
	startErr  error
	starts    int
	recording bool
}

func (r *fakeRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	if r.startErr != nil {
		return r.startErr
	}
	r.recording = true
	return nil
}

func (r *fakeRecorder) Stop() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	return r.samples
}

func (r *fakeRecorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *fakeRecorder) startCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}

// fakeRecognizer возвращает фиксированный текст.
type fakeRecognizer struct {
	mu       sync.Mutex
	text     string
	segments []string
	err      error
	calls    int
}

func (f *fakeRecognizer) Transcribe(samples []float32, lang string, onSegment speech.SegmentFunc) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	if onSegment != nil {
		for _, s := range f.segments {
			onSegment(s)
		}
	}
	return f.text, nil
}

func (f *fakeRecognizer) Close()       {}
func (f *fakeRecognizer) Name() string { return "fake" }

func (f *fakeRecognizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakePolisher возвращает фиксированный результат полировки.
type fakePolisher struct {
	mu       sync.Mutex
	result   string
	tokens   []string
	err      error
	calls    int
	keepLang bool
}

func (f *fakePolisher) Polish(ctx context.Context, text string, keepLanguage bool, onToken llm.TokenFunc) (string, error) {
	f.mu.Lock()
	f.calls++
	f.keepLang = keepLanguage
	f.mu.Unlock()

	if f.err != nil {
		return text, f.err
	}
	if onToken != nil {
		for _, tok := range f.tokens {
			onToken(tok)
		}
	}
	return f.result, nil
}

func (f *fakePolisher) Close()       {}
func (f *fakePolisher) Name() string { return "fake" }

func (f *fakePolisher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeInjector записывает вставленные тексты.
type fakeInjector struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeInjector) Inject(text string) ([]inject.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return []inject.Attempt{{Method: inject.MethodKeystroke, Err: f.err}}, f.err
	}
	return []inject.Attempt{{Method: inject.MethodAccessibility}}, nil
}

func (f *fakeInjector) injected() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.texts))
	copy(out, f.texts)
	return out
}

// recordingSink собирает события пайплайна и сигналит о завершении.
type recordingSink struct {
	mu       sync.Mutex
	events   []string
	tokens   []string
	errKind  ErrorKind
	doneText string
	terminal chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{terminal: make(chan string, 4)}
}

func (s *recordingSink) add(e string) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *recordingSink) Recording()            { s.add("recording") }
func (s *recordingSink) Transcribing(p string) { s.add("transcribing") }
func (s *recordingSink) Polishing()            { s.add("polishing") }
func (s *recordingSink) Injecting()            { s.add("injecting") }

func (s *recordingSink) PolishToken(tok string) {
	s.mu.Lock()
	s.tokens = append(s.tokens, tok)
	s.mu.Unlock()
}

func (s *recordingSink) Done(text string, attempts []inject.Attempt) {
	s.mu.Lock()
	s.doneText = text
	s.mu.Unlock()
	s.add("done")
	s.terminal <- "done"
}

func (s *recordingSink) NoSpeech() {
	s.add("nospeech")
	s.terminal <- "nospeech"
}

func (s *recordingSink) Error(kind ErrorKind, err error) {
	s.mu.Lock()
	s.errKind = kind
	s.mu.Unlock()
	s.add("error")
	s.terminal <- "error"
}

func (s *recordingSink) wait(t *testing.T) string {
	t.Helper()
	select {
	case e := <-s.terminal:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline did not finish")
		return ""
	}
}

func (s *recordingSink) has(event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e == event {
			return true
		}
	}
	return false
}

func loudSamples() []float32 {
	samples := make([]float32, audio.MinSamples+1600)
	for i := range samples {
		samples[i] = 0.1
	}
	return samples
}

func quietSamples() []float32 {
	samples := make([]float32, audio.MinSamples+1600)
	for i := range samples {
		samples[i] = 0.0001
	}
	return samples
}

func testParams(output config.OutputPreference) func() Params {
	return func() Params {
		return Params{
			Language:        "auto",
			Output:          output,
			SilenceRMS:      config.DefaultSilenceRMS,
			FillerTemplates: textproc.DefaultFillerTemplates(),
			LatinThreshold:  textproc.DefaultLatinThreshold,
			PolishTimeout:   time.Second,
		}
	}
}

type deps struct {
	recorder   *fakeRecorder
	recognizer *fakeRecognizer
	polisher   *fakePolisher
	injector   *fakeInjector
	sink       *recordingSink
}

func newController(d deps, params func() Params) *Controller {
	recProvider := func() speech.Recognizer {
		if d.recognizer == nil {
			return nil
		}
		return d.recognizer
	}
	polProvider := func() llm.Polisher {
		if d.polisher == nil {
			return nil
		}
		return d.polisher
	}
	return NewController(d.recorder, recProvider, polProvider, d.injector, d.sink, params)
}

func TestRawOutputEndToEnd(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "  turn  on the lights "},
		polisher:   &fakePolisher{result: "should not be used"},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandlePress()
	c.HandleRelease()

	if got := d.sink.wait(t); got != "done" {
		t.Fatalf("terminal event = %q, want done", got)
	}

	injected := d.injector.injected()
	if len(injected) != 1 || injected[0] != "turn on the lights" {
		t.Fatalf("injected = %v, want normalized raw text", injected)
	}
	if d.polisher.callCount() != 0 {
		t.Fatal("polisher must not run when output preference is raw")
	}
	if c.State() != StateIdle {
		t.Fatalf("state after session = %v, want idle", c.State())
	}
}

func TestPolishedOutputEndToEnd(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "turn on the lights", segments: []string{"turn on", "the lights"}},
		polisher:   &fakePolisher{result: "Turn on the lights.", tokens: []string{"Turn ", "on ", "the ", "lights."}},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputPolished))

	c.HandlePress()
	c.HandleRelease()
	d.sink.wait(t)

	injected := d.injector.injected()
	if len(injected) != 1 || injected[0] != "Turn on the lights." {
		t.Fatalf("injected = %v, want polished text", injected)
	}
	if !d.sink.has("polishing") {
		t.Fatal("expected polishing event")
	}
	if len(d.sink.tokens) != 4 {
		t.Fatalf("streamed tokens = %d, want 4", len(d.sink.tokens))
	}
	// Латинодоминантный текст - LLM должна сохранить язык
	if !d.polisher.keepLang {
		t.Fatal("expected keepLanguage flag for latin-dominant transcript")
	}
}

func TestSingleFlight(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "hello"},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandlePress()
	c.HandlePress() // во время записи - отбрасывается
	c.HandlePress()

	if got := d.recorder.startCount(); got != 1 {
		t.Fatalf("recorder started %d times, want 1", got)
	}

	c.HandleRelease()
	d.sink.wait(t)

	if got := d.injector.injected(); len(got) != 1 {
		t.Fatalf("injections = %d, want 1", len(got))
	}
}

func TestReleaseWithoutPressIgnored(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "hello"},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandleRelease()

	select {
	case e := <-d.sink.terminal:
		t.Fatalf("unexpected pipeline run: %s", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSilenceDiscarded(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: quietSamples()},
		recognizer: &fakeRecognizer{text: "phantom"},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandlePress()
	c.HandleRelease()

	if got := d.sink.wait(t); got != "nospeech" {
		t.Fatalf("terminal event = %q, want nospeech", got)
	}
	if d.recognizer.callCount() != 0 {
		t.Fatal("recognizer must not run on silence")
	}
	if len(d.injector.injected()) != 0 {
		t.Fatal("nothing must be injected on silence")
	}
}

func TestTooShortRecordingDiscarded(t *testing.T) {
	short := make([]float32, audio.MinSamples-1)
	for i := range short {
		short[i] = 0.1
	}

	d := deps{
		recorder:   &fakeRecorder{samples: short},
		recognizer: &fakeRecognizer{text: "phantom"},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandlePress()
	c.HandleRelease()

	if got := d.sink.wait(t); got != "nospeech" {
		t.Fatalf("terminal event = %q, want nospeech", got)
	}
	if d.recognizer.callCount() != 0 {
		t.Fatal("recognizer must not run on too short recording")
	}
}

func TestFillerDiscarded(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "Um."},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandlePress()
	c.HandleRelease()

	if got := d.sink.wait(t); got != "nospeech" {
		t.Fatalf("terminal event = %q, want nospeech", got)
	}
	if len(d.injector.injected()) != 0 {
		t.Fatal("filler transcript must not be injected")
	}
}

func TestPolishErrorFallsBackToRaw(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "send the report"},
		polisher:   &fakePolisher{err: errors.New("llm down")},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputPolished))

	c.HandlePress()
	c.HandleRelease()

	if got := d.sink.wait(t); got != "done" {
		t.Fatalf("terminal event = %q, want done", got)
	}
	injected := d.injector.injected()
	if len(injected) != 1 || injected[0] != "send the report" {
		t.Fatalf("injected = %v, want raw fallback", injected)
	}
}

func TestPolishErrorAborts(t *testing.T) {
	params := func() Params {
		p := testParams(config.OutputPolished)()
		p.PolishAbortOnError = true
		return p
	}

	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "send the report"},
		polisher:   &fakePolisher{err: errors.New("llm down")},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, params)

	c.HandlePress()
	c.HandleRelease()

	if got := d.sink.wait(t); got != "error" {
		t.Fatalf("terminal event = %q, want error", got)
	}
	if d.sink.errKind != KindPolish {
		t.Fatalf("error kind = %q, want %q", d.sink.errKind, KindPolish)
	}
	if len(d.injector.injected()) != 0 {
		t.Fatal("nothing must be injected when polish aborts")
	}
}

func TestEmptyPolishResultKeepsRaw(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "send the report"},
		polisher:   &fakePolisher{result: "   "},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputPolished))

	c.HandlePress()
	c.HandleRelease()
	d.sink.wait(t)

	injected := d.injector.injected()
	if len(injected) != 1 || injected[0] != "send the report" {
		t.Fatalf("injected = %v, want raw text when polish result is empty", injected)
	}
}

func TestInjectionErrorReported(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "hello"},
		injector:   &fakeInjector{err: errors.New("no focused field")},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandlePress()
	c.HandleRelease()

	if got := d.sink.wait(t); got != "error" {
		t.Fatalf("terminal event = %q, want error", got)
	}
	if d.sink.errKind != KindInjection {
		t.Fatalf("error kind = %q, want %q", d.sink.errKind, KindInjection)
	}
	if c.State() != StateIdle {
		t.Fatalf("state after error = %v, want idle", c.State())
	}
}

func TestInjectionUnsupportedReportedAsPermission(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "hello"},
		injector:   &fakeInjector{err: fmt.Errorf("все способы вставки недоступны: %w", inject.ErrUnsupported)},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandlePress()
	c.HandleRelease()

	if got := d.sink.wait(t); got != "error" {
		t.Fatalf("terminal event = %q, want error", got)
	}
	if d.sink.errKind != KindPermission {
		t.Fatalf("error kind = %q, want %q", d.sink.errKind, KindPermission)
	}
}

func TestRecognitionErrorReported(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{err: errors.New("decode failed")},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandlePress()
	c.HandleRelease()

	if got := d.sink.wait(t); got != "error" {
		t.Fatalf("terminal event = %q, want error", got)
	}
	if d.sink.errKind != KindRecognition {
		t.Fatalf("error kind = %q, want %q", d.sink.errKind, KindRecognition)
	}
}

func TestPressWithoutModel(t *testing.T) {
	d := deps{
		recorder: &fakeRecorder{samples: loudSamples()},
		injector: &fakeInjector{},
		sink:     newRecordingSink(),
	}
	c := newController(d, testParams(config.OutputRaw))

	c.HandlePress()

	if got := d.sink.wait(t); got != "error" {
		t.Fatalf("terminal event = %q, want error", got)
	}
	if d.sink.errKind != KindModelUnavailable {
		t.Fatalf("error kind = %q, want %q", d.sink.errKind, KindModelUnavailable)
	}
	if d.recorder.startCount() != 0 {
		t.Fatal("recorder must not start without a model")
	}
}

func TestTranscribePreviewAccumulates(t *testing.T) {
	d := deps{
		recorder:   &fakeRecorder{samples: loudSamples()},
		recognizer: &fakeRecognizer{text: "one two", segments: []string{"one", "two"}},
		injector:   &fakeInjector{},
		sink:       newRecordingSink(),
	}

	var previews []string
	var mu sync.Mutex
	sink := &previewSink{recordingSink: d.sink, onPreview: func(p string) {
		mu.Lock()
		previews = append(previews, p)
		mu.Unlock()
	}}

	c := NewController(d.recorder,
		func() speech.Recognizer { return d.recognizer },
		func() llm.Polisher { return nil },
		d.injector, sink, testParams(config.OutputRaw))

	c.HandlePress()
	c.HandleRelease()
	d.sink.wait(t)

	mu.Lock()
	defer mu.Unlock()
	joined := strings.Join(previews, "|")
	if joined != "|one|one two" {
		t.Fatalf("previews = %q, want empty, then accumulated segments", joined)
	}
}

// previewSink перехватывает текст предпросмотра.
type previewSink struct {
	*recordingSink
	onPreview func(string)
}

func (s *previewSink) Transcribing(preview string) {
	s.onPreview(preview)
	s.recordingSink.Transcribing(preview)
}
