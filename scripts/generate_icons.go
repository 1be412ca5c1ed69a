//go:build ignore

// Скрипт для генерации иконок трея.
// Запуск: go run scripts/generate_icons.go
package main

import (
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
)

func main() {
	dir := "embedded"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Не удалось создать директорию %s: %v", dir, err)
	}

	icons := []struct {
		name  string
		color color.RGBA
		shape string
	}{
		{"icon_idle.png", color.RGBA{128, 128, 136, 255}, "circle"},      // Серый
		{"icon_recording.png", color.RGBA{220, 60, 60, 255}, "circle"},   // Красный
		{"icon_processing.png", color.RGBA{240, 150, 40, 255}, "circle"}, // Оранжевый
		{"icon_error.png", color.RGBA{235, 195, 50, 255}, "triangle"},    // Жёлтый
	}

	for _, icon := range icons {
		path := filepath.Join(dir, icon.name)
		var err error
		if icon.shape == "triangle" {
			err = generateTriangle(path, icon.color)
		} else {
			err = generateCircle(path, icon.color)
		}
		if err != nil {
			log.Fatalf("Ошибка генерации %s: %v", icon.name, err)
		}
		log.Printf("Создан: %s", path)
	}
}

func generateCircle(path string, c color.RGBA) error {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	centerX, centerY := size/2, size/2
	radius := 22.0

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x - centerX)
			dy := float64(y - centerY)
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, c)
			}
		}
	}

	return writePNG(path, img)
}

func generateTriangle(path string, c color.RGBA) error {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	top, bottom := 8, size-8
	centerX := size / 2

	for y := top; y <= bottom; y++ {
		t := float64(y-top) / float64(bottom-top)
		half := int(t * float64(size/2-6))
		for x := centerX - half; x <= centerX+half; x++ {
			img.Set(x, y, c)
		}
	}

	return writePNG(path, img)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
