package inject

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeTier с настраиваемым результатом.
type fakeTier struct {
	method Method
	err    error
	calls  int
}

func (f *fakeTier) Method() Method { return f.method }

func (f *fakeTier) Deliver(text string) error {
	f.calls++
	return f.err
}

// fakeClipboard хранит содержимое в памяти.
type fakeClipboard struct {
	mu      sync.Mutex
	content string
	history []string
	readErr error
}

func (c *fakeClipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return "", c.readErr
	}
	return c.content, nil
}

func (c *fakeClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = text
	c.history = append(c.history, text)
	return nil
}

func directUI(fn func()) { fn() }

func newTestChain(clip Clipboard, tiers ...tier) *Chain {
	return &Chain{
		runUI: directUI,
		clip:  clip,
		tiers: tiers,
	}
}

func TestInjectStopsAtFirstSuccess(t *testing.T) {
	first := &fakeTier{method: MethodAccessibility, err: errors.New("no element")}
	second := &fakeTier{method: MethodClipboard}
	third := &fakeTier{method: MethodKeystroke}

	c := newTestChain(&fakeClipboard{}, first, second, third)

	attempts, err := c.Inject("hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(attempts))
	}
	if attempts[0].Succeeded() {
		t.Fatal("first attempt must be recorded as failed")
	}
	if !attempts[1].Succeeded() || attempts[1].Method != MethodClipboard {
		t.Fatalf("second attempt = %+v, want clipboard success", attempts[1])
	}
	if third.calls != 0 {
		t.Fatal("third tier must not run after a success")
	}
}

func TestInjectUnsupportedTierSkipped(t *testing.T) {
	ax := &fakeTier{method: MethodAccessibility, err: ErrUnsupported}
	ks := &fakeTier{method: MethodKeystroke}

	c := newTestChain(&fakeClipboard{}, ax, ks)

	attempts, err := c.Inject("hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attempts) != 2 || !attempts[1].Succeeded() {
		t.Fatalf("attempts = %+v, want fallback success", attempts)
	}
}

func TestInjectTotalFailureLeavesTextInClipboard(t *testing.T) {
	clip := &fakeClipboard{}
	failing := &fakeTier{method: MethodKeystroke, err: errors.New("denied")}

	c := newTestChain(clip, failing)

	attempts, err := c.Inject("important text")
	if err == nil {
		t.Fatal("expected error when all tiers fail")
	}
	if len(attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(attempts))
	}

	if got, _ := clip.Read(); got != "important text" {
		t.Fatalf("clipboard = %q, want the failed text", got)
	}
}

func TestInjectAllTiersUnsupported(t *testing.T) {
	clip := &fakeClipboard{}
	ax := &fakeTier{method: MethodAccessibility, err: ErrUnsupported}
	ks := &fakeTier{method: MethodKeystroke, err: ErrUnsupported}

	c := newTestChain(clip, ax, ks)

	_, err := c.Inject("hello")
	if err == nil {
		t.Fatal("expected error when no tier is available")
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("error = %v, want wrapped ErrUnsupported", err)
	}
	if got, _ := clip.Read(); got != "hello" {
		t.Fatalf("clipboard = %q, want the text for manual paste", got)
	}
}

func TestInjectMixedFailureNotUnsupported(t *testing.T) {
	ax := &fakeTier{method: MethodAccessibility, err: ErrUnsupported}
	ks := &fakeTier{method: MethodKeystroke, err: errors.New("denied")}

	c := newTestChain(&fakeClipboard{}, ax, ks)

	_, err := c.Inject("hello")
	if err == nil {
		t.Fatal("expected error when all tiers fail")
	}
	// Частичный отказ - проблема не в разрешениях
	if errors.Is(err, ErrUnsupported) {
		t.Fatalf("error = %v, must not be ErrUnsupported when a tier ran", err)
	}
}

func TestInjectEmptyTextNoop(t *testing.T) {
	tier := &fakeTier{method: MethodKeystroke}
	c := newTestChain(&fakeClipboard{}, tier)

	attempts, err := c.Inject("")
	if err != nil || attempts != nil {
		t.Fatalf("empty text: attempts=%v err=%v, want nil/nil", attempts, err)
	}
	if tier.calls != 0 {
		t.Fatal("tiers must not run for empty text")
	}
}

func newFastClipboardTier(clip Clipboard, paste func() error) *clipboardTier {
	return &clipboardTier{
		clip:    clip,
		paste:   paste,
		retries: 3,
		backoff: time.Millisecond,
		settle:  time.Millisecond,
	}
}

func TestClipboardTierRestoresOnSuccess(t *testing.T) {
	clip := &fakeClipboard{content: "original"}
	tier := newFastClipboardTier(clip, func() error { return nil })

	if err := tier.Deliver("new text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := clip.Read(); got != "original" {
		t.Fatalf("clipboard = %q, want original content restored", got)
	}

	// Текст успел побывать в буфере до восстановления
	found := false
	for _, h := range clip.history {
		if h == "new text" {
			found = true
		}
	}
	if !found {
		t.Fatal("text must pass through the clipboard")
	}
}

func TestClipboardTierRestoresOnFailure(t *testing.T) {
	clip := &fakeClipboard{content: "original"}
	pasteCalls := 0
	tier := newFastClipboardTier(clip, func() error {
		pasteCalls++
		return errors.New("paste blocked")
	})

	if err := tier.Deliver("new text"); err == nil {
		t.Fatal("expected error when paste never succeeds")
	}

	if pasteCalls != 3 {
		t.Fatalf("paste attempts = %d, want 3", pasteCalls)
	}
	if got, _ := clip.Read(); got != "original" {
		t.Fatalf("clipboard = %q, want original content restored after failure", got)
	}
}

func TestClipboardTierRetriesThenSucceeds(t *testing.T) {
	clip := &fakeClipboard{content: "original"}
	pasteCalls := 0
	tier := newFastClipboardTier(clip, func() error {
		pasteCalls++
		if pasteCalls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err := tier.Deliver("new text"); err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if pasteCalls != 3 {
		t.Fatalf("paste attempts = %d, want 3", pasteCalls)
	}
}

func TestClipboardTierReadFailureSkipsRestore(t *testing.T) {
	clip := &fakeClipboard{readErr: errors.New("clipboard busy")}
	tier := newFastClipboardTier(clip, func() error { return nil })

	if err := tier.Deliver("new text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Восстанавливать нечего - остаётся вставленный текст
	clip.mu.Lock()
	defer clip.mu.Unlock()
	if clip.content != "new text" {
		t.Fatalf("clipboard = %q, want delivered text kept", clip.content)
	}
}
