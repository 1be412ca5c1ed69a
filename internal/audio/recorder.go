// Package audio предоставляет запись аудио с микрофона.
package audio

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate - частота дискретизации (требование Whisper).
	SampleRate = 16000
	// Channels - количество каналов (mono).
	Channels = 1
	// FramesPerBuffer - размер буфера.
	FramesPerBuffer = 1024
	// MinSamples - минимальное полезное количество сэмплов (200ms при 16kHz).
	// Более короткие записи отбрасываются до распознавания.
	MinSamples = SampleRate / 5 // 3200 samples = 200ms
)

// Recorder записывает аудио с микрофона. Буфер сэмплов принадлежит
// активной сессии: Stop передаёт его вызывающему и обнуляет внутреннее
// состояние, повторное чтение невозможно.
type Recorder struct {
	mu          sync.Mutex
	stream      *portaudio.Stream
	buffer      []float32
	samples     []float32
	captureRate int
	running     bool
	done        chan struct{}
}

// New создаёт новый Recorder.
func New() (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	return &Recorder{
		buffer: make([]float32, FramesPerBuffer),
	}, nil
}

// Start начинает запись аудио. Если устройство не открывается на
// 16kHz, поток открывается на родной частоте устройства, а сэмплы
// приводятся к 16kHz в Stop.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	r.samples = make([]float32, 0, SampleRate*30) // Буфер на 30 сек
	r.done = make(chan struct{})

	rate := SampleRate
	stream, err := portaudio.OpenDefaultStream(
		Channels,        // input channels
		0,               // output channels
		SampleRate,      // sample rate
		FramesPerBuffer, // frames per buffer
		r.buffer,        // buffer
	)
	if err != nil {
		dev, derr := portaudio.DefaultInputDevice()
		if derr != nil || int(dev.DefaultSampleRate) == SampleRate {
			return err
		}
		rate = int(dev.DefaultSampleRate)
		log.Printf("Микрофон не открылся на %dHz, пробуем %dHz", SampleRate, rate)
		stream, err = portaudio.OpenDefaultStream(
			Channels, 0, dev.DefaultSampleRate, FramesPerBuffer, r.buffer,
		)
		if err != nil {
			return err
		}
	}

	r.stream = stream
	r.captureRate = rate
	r.running = true

	if err := stream.Start(); err != nil {
		r.stream.Close()
		r.stream = nil
		r.running = false
		return err
	}

	go r.recordLoop()

	return nil
}

func (r *Recorder) recordLoop() {
	defer close(r.done)

	for {
		r.mu.Lock()
		running := r.running
		stream := r.stream
		r.mu.Unlock()

		if !running || stream == nil {
			return
		}

		available, err := stream.AvailableToRead()
		if err != nil || available == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if err := stream.Read(); err != nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		r.mu.Lock()
		if r.running {
			bufCopy := make([]float32, len(r.buffer))
			copy(bufCopy, r.buffer)
			r.samples = append(r.samples, bufCopy...)
		}
		r.mu.Unlock()
	}
}

// Stop останавливает запись и передаёт накопленные сэмплы вызывающему,
// приведённые к 16kHz. Проверку минимальной длительности делает
// пайплайн сессии.
func (r *Recorder) Stop() []float32 {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}

	r.running = false
	stream := r.stream
	r.stream = nil
	samples := r.samples
	r.samples = nil
	rate := r.captureRate
	done := r.done
	r.mu.Unlock()

	// Ждём завершения recordLoop (он проверяет running каждые 10ms)
	if done != nil {
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	}

	if stream != nil {
		stream.Stop()
		stream.Close()
	}

	if rate != 0 && rate != SampleRate {
		samples = Resample(samples, rate)
	}

	return samples
}

// Close освобождает ресурсы.
func (r *Recorder) Close() {
	r.Stop()
	portaudio.Terminate()
}

// IsRecording возвращает true если идёт запись.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// GetSamples возвращает копию текущих записанных сэмплов без остановки
// записи. Используется окном визуализации.
func (r *Recorder) GetSamples() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running || len(r.samples) == 0 {
		return nil
	}

	samples := make([]float32, len(r.samples))
	copy(samples, r.samples)
	return samples
}

// RMS вычисляет среднеквадратичную амплитуду буфера. Значение ниже
// порога тишины означает, что распознавание запускать не нужно.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Resample приводит сэмплы произвольной частоты к 16kHz линейной
// интерполяцией. Для устройств, не поддерживающих 16kHz поток.
func Resample(samples []float32, fromRate int) []float32 {
	if fromRate == SampleRate || len(samples) == 0 || fromRate <= 0 {
		return samples
	}

	ratio := float64(SampleRate) / float64(fromRate)
	newLen := int(float64(len(samples)) * ratio)
	out := make([]float32, 0, newLen)

	for i := 0; i < newLen; i++ {
		srcPos := float64(i) / ratio
		i0 := int(srcPos)
		i1 := i0 + 1
		if i1 >= len(samples) {
			i1 = len(samples) - 1
		}
		frac := srcPos - float64(i0)

		y0 := float64(samples[i0])
		y1 := float64(samples[i1])
		out = append(out, float32(y0+(y1-y0)*frac))
	}

	return out
}
