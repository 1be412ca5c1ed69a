package models

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestDownloadFile(t *testing.T) {
	payload := []byte("gguf model bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	mgr := newTestManager(t)
	info := ModelInfo{
		ID:       "test-model",
		Engine:   EngineWhisper,
		Name:     "Test Model",
		Filename: "ggml-test.bin",
		URL:      srv.URL,
		Size:     int64(len(payload)),
	}

	if err := mgr.Download(context.Background(), info, nil); err != nil {
		t.Fatalf("Download: %v", err)
	}

	if !mgr.IsDownloaded(info) {
		t.Fatal("model must be downloaded after Download")
	}

	data, err := os.ReadFile(mgr.GetModelPath(info))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("file content = %q, want served payload", data)
	}
}

func TestDownloadReportsProgress(t *testing.T) {
	payload := make([]byte, 100*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	mgr := newTestManager(t)
	info := ModelInfo{
		ID:       "test-model",
		Engine:   EngineWhisper,
		Filename: "ggml-test.bin",
		URL:      srv.URL,
		Size:     int64(len(payload)),
	}

	progress := make(chan Progress, 64)
	if err := mgr.Download(context.Background(), info, progress); err != nil {
		t.Fatalf("Download: %v", err)
	}
	close(progress)

	var last Progress
	for p := range progress {
		last = p
	}
	if !last.Done {
		t.Fatal("last progress event must be Done")
	}
	if last.Downloaded != int64(len(payload)) {
		t.Fatalf("downloaded = %d, want %d", last.Downloaded, len(payload))
	}
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	mgr := newTestManager(t)
	info := ModelInfo{
		ID:       "test-model",
		Engine:   EngineWhisper,
		Filename: "ggml-test.bin",
		URL:      srv.URL,
	}

	if err := mgr.Download(context.Background(), info, nil); err == nil {
		t.Fatal("expected error on HTTP 404")
	}
	if mgr.IsDownloaded(info) {
		t.Fatal("failed download must not leave a model behind")
	}
}

func TestDownloadZipUnpacksDirectory(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("vosk-test/am/final.mdl")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	f.Write([]byte("acoustic model"))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	mgr := newTestManager(t)
	info := ModelInfo{
		ID:       "test-vosk",
		Engine:   EngineVosk,
		Filename: "vosk-test",
		URL:      srv.URL,
		IsZip:    true,
	}

	if err := mgr.Download(context.Background(), info, nil); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !mgr.IsDownloaded(info) {
		t.Fatal("zip model must be unpacked into a directory")
	}
}

func TestDeleteRemovesModel(t *testing.T) {
	mgr := newTestManager(t)
	markDownloaded(t, mgr, "whisper-tiny")

	info, _ := GetModel("whisper-tiny")
	if err := mgr.Delete(info); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mgr.IsDownloaded(info) {
		t.Fatal("model must not be downloaded after Delete")
	}
}

func TestListDownloaded(t *testing.T) {
	mgr := newTestManager(t)
	markDownloaded(t, mgr, "whisper-tiny")
	markDownloaded(t, mgr, "llm-qwen2.5-0.5b")

	got := mgr.ListDownloaded()
	if len(got) != 2 {
		t.Fatalf("downloaded = %d models, want 2", len(got))
	}
}
