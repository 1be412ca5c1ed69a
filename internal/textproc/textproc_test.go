package textproc

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"hello", "hello"},
		{"  hello   world  ", "hello world"},
		{"one\ttwo\n\nthree", "one two three"},
		{"привет,   мир", "привет, мир"},
	}

	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsFiller(t *testing.T) {
	templates := DefaultFillerTemplates()

	cases := []struct {
		in   string
		want bool
	}{
		{"um", true},
		{"Um.", true},
		{"  UH  ", true},
		{"эм", true},
		{"嗯", true},
		{"...", true}, // только пунктуация
		{"", true},
		{"turn on the lights", false},
		{"umbrella", false},
	}

	for _, c := range cases {
		if got := IsFiller(c.in, templates); got != c.want {
			t.Fatalf("IsFiller(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestIsFillerCustomTemplate(t *testing.T) {
	templates := []string{"ну это"}

	if !IsFiller("Ну, это...", templates) {
		t.Fatal("expected punctuation-insensitive template match")
	}
	if IsFiller("ну это работает", templates) {
		t.Fatal("longer phrase must not match template")
	}
}

func TestLatinDominant(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"hello world", true},
		{"hello world 你好", true}, // 10 латинских из 12 непробельных
		{"你好世界 ok", false},       // 2 из 6
		{"привет мир", false},    // кириллица не латиница
		{"check the git log", true},
		{"", false},
		{"   ", false},
	}

	for _, c := range cases {
		if got := LatinDominant(c.in, DefaultLatinThreshold); got != c.want {
			t.Fatalf("LatinDominant(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLatinDominantZeroThreshold(t *testing.T) {
	// Нулевой порог заменяется порогом по умолчанию
	if LatinDominant("你好世界 ok", 0) {
		t.Fatal("zero threshold must fall back to the default")
	}
}
