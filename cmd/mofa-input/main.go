// MoFA Input - кроссплатформенное приложение для голосового ввода текста.
//
// Работает в системном трее. Пока зажата push-to-talk клавиша
// (по умолчанию Ctrl+Shift+Space), идёт запись; после отпускания
// текст распознаётся, полируется локальной LLM и вставляется
// в активное поле ввода.
package main

import (
	"log"
	"os"

	"github.com/mofa-org/mofa-input/internal/app"
	"github.com/mofa-org/mofa-input/internal/hotkey"
)

// Version устанавливается при сборке через -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Printf("MoFA Input %s запускается...", Version)

	// Запускаем в главном потоке (требование для macOS и некоторых GUI)
	hotkey.RunOnMainThread(run)
}

func run() {
	application, err := app.New()
	if err != nil {
		log.Printf("Ошибка инициализации: %v", err)
		os.Exit(1)
	}

	log.Println("Приложение запущено. Зажмите Ctrl+Shift+Space для записи.")
	application.Run()
}
