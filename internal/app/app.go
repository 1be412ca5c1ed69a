// Package app содержит основную логику приложения.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mofa-org/mofa-input/internal/audio"
	"github.com/mofa-org/mofa-input/internal/config"
	"github.com/mofa-org/mofa-input/internal/dialog"
	"github.com/mofa-org/mofa-input/internal/hotkey"
	"github.com/mofa-org/mofa-input/internal/i18n"
	"github.com/mofa-org/mofa-input/internal/inject"
	"github.com/mofa-org/mofa-input/internal/llm"
	"github.com/mofa-org/mofa-input/internal/models"
	"github.com/mofa-org/mofa-input/internal/notify"
	"github.com/mofa-org/mofa-input/internal/overlay"
	"github.com/mofa-org/mofa-input/internal/session"
	"github.com/mofa-org/mofa-input/internal/speech"
	"github.com/mofa-org/mofa-input/internal/tray"
)

// errorDisplay - сколько держать состояние ошибки в трее и оверлее.
const errorDisplay = 2 * time.Second

// App представляет главное приложение: собирает все подсистемы
// и связывает их с контроллером сессий.
type App struct {
	mu            sync.Mutex
	config        *config.Config
	recorder      *audio.Recorder
	modelManager  *models.Manager
	speechFactory *speech.Factory
	llmFactory    *llm.Factory
	injector      *inject.Chain
	controller    *session.Controller
	notifier      *notify.Notifier
	tray          *tray.Tray
	hotkey        *hotkey.Handler
	overlayWin    *overlay.Window
}

// New создаёт новое приложение.
func New() (*App, error) {
	cfg := config.New()

	// Инициализируем язык интерфейса из конфига
	if uiLang := cfg.UILanguage(); uiLang != "" {
		i18n.SetLanguage(i18n.Language(uiLang))
	}

	recorder, err := audio.New()
	if err != nil {
		return nil, err
	}

	modelManager, err := models.NewManager()
	if err != nil {
		recorder.Close()
		return nil, err
	}

	app := &App{
		config:        cfg,
		recorder:      recorder,
		modelManager:  modelManager,
		speechFactory: speech.NewFactory(modelManager),
		llmFactory:    llm.NewFactory(modelManager),
		notifier:      notify.New(cfg.NotificationsEnabled()),
	}

	// Вся доставка текста идёт через главный поток
	app.injector = inject.NewChain(hotkey.CallOnMainThread)

	// Окно статуса (recorder реализует SampleProvider)
	app.overlayWin = overlay.New(recorder, overlay.DefaultConfig())

	app.controller = session.NewController(
		recorder,
		func() speech.Recognizer { return app.speechFactory.Current() },
		func() llm.Polisher { return app.llmFactory.Current() },
		app.injector,
		&statusSink{app: app},
		app.sessionParams,
	)

	app.hotkey = hotkey.New(app.controller.HandlePress, app.controller.HandleRelease)

	modelEntries := make([]tray.ModelEntry, 0, len(models.Registry))
	for _, m := range models.Registry {
		modelEntries = append(modelEntries, tray.ModelEntry{
			ID:         m.ID,
			Name:       m.Name,
			Downloaded: modelManager.IsDownloaded(m),
		})
	}

	app.tray = tray.New(tray.Callbacks{
		OnNotificationsToggle: func() bool {
			enabled := app.config.ToggleNotifications()
			app.notifier.SetEnabled(enabled)
			return enabled
		},
		OnOutputToggle: func() bool {
			return app.config.ToggleOutput() == config.OutputPolished
		},
		OnHotkeyClick: app.changeHotkey,
		OnModelClick:  app.toggleModel,
		OnQuit: func() {
			app.Close()
		},
	}, modelEntries)

	return app, nil
}

// Run запускает приложение. Блокируется до выхода из трея.
func (a *App) Run() {
	a.tray.Run(func() {
		a.tray.SetNotifications(a.config.NotificationsEnabled())
		a.tray.SetOutputPolished(a.config.Output() == config.OutputPolished)

		if err := inject.CheckPermission(); err != nil {
			log.Printf("Нет разрешения на управление вводом: %v", err)
			go dialog.ShowPermissionRequired()
		}

		hk := a.config.Hotkey()
		if err := a.hotkey.Register(hk); err != nil {
			log.Printf("Ошибка регистрации горячей клавиши: %v", err)
			a.notifier.Error(i18n.T("error_hotkey_register"))
		}

		// Модели загружаются в фоне - хоткей до этого сообщит
		// "модель не загружена"
		go a.loadModels()
	})
}

// sessionParams собирает снимок настроек для новой сессии.
func (a *App) sessionParams() session.Params {
	filter := a.config.Filter()
	polish := a.config.Polish()

	return session.Params{
		Language:           a.config.Language(),
		Output:             a.config.Output(),
		SilenceRMS:         filter.SilenceRMS,
		FillerTemplates:    filter.FillerTemplates,
		LatinThreshold:     filter.LatinThreshold,
		PolishAbortOnError: polish.AbortOnError,
		PolishTimeout:      session.DefaultPolishTimeout,
	}
}

// loadModels подбирает и загружает модели по объёму памяти машины.
// Предпочтение пользователя из конфига имеет приоритет.
func (a *App) loadModels() {
	totalMem, err := models.TotalMemory()
	if err != nil {
		log.Printf("Не удалось определить объём памяти: %v", err)
	}

	asr, err := models.SelectASR(a.modelManager, totalMem, a.config.ASRModelID())
	if err != nil {
		log.Printf("Подбор модели распознавания: %v", err)
		a.notifier.Error(i18n.T("error_model_not_downloaded"))
		return
	}

	log.Printf("Загрузка модели распознавания: %s", asr.Name)
	if err := a.speechFactory.Load(asr); err != nil {
		log.Printf("Ошибка загрузки модели: %v", err)
		a.notifier.Error(i18n.T("error_model_load"))
		return
	}

	a.loadPolisher(totalMem)

	a.notifier.Ready()
}

// loadPolisher настраивает полировку: локальная GGUF модель, если
// скачана, иначе внешний Ollama из конфига. Полировка опциональна -
// без неё вставляется сырой текст.
func (a *App) loadPolisher(totalMem uint64) {
	polish := a.config.Polish()

	info, err := models.SelectLLM(a.modelManager, totalMem, polish.ModelID)
	if err != nil {
		log.Printf("Локальная модель полировки недоступна: %v", err)
	} else {
		log.Printf("Загрузка модели полировки: %s", info.Name)
		lerr := a.llmFactory.LoadLocal(info)
		if lerr == nil {
			return
		}
		log.Printf("Ошибка загрузки модели полировки: %v", lerr)
	}

	if polish.OllamaURL != "" {
		log.Printf("Полировка через Ollama: %s (%s)", polish.OllamaURL, polish.OllamaModel)
		a.llmFactory.UseOllama(polish.OllamaURL, polish.OllamaModel)
		return
	}

	log.Println("Полировка недоступна, вставляется сырой текст")
}

// changeHotkey открывает диалог выбора комбинации и перерегистрирует её.
func (a *App) changeHotkey() {
	current := a.config.Hotkey()

	hk, err := dialog.SelectHotkey(current)
	if err != nil {
		return // Пользователь отменил
	}

	if err := a.hotkey.Register(hk); err != nil {
		log.Printf("Ошибка регистрации горячей клавиши: %v", err)
		a.notifier.Error(i18n.T("error_hotkey_register"))
		// Возвращаем прежнюю комбинацию
		if err := a.hotkey.Register(current); err != nil {
			log.Printf("Не удалось вернуть прежнюю комбинацию: %v", err)
		}
		return
	}

	a.config.SetHotkey(hk)
}

// toggleModel скачивает модель из подменю трея или удаляет скачанную.
func (a *App) toggleModel(id string) {
	info, ok := models.GetModel(id)
	if !ok {
		return
	}

	if !a.modelManager.IsDownloaded(info) {
		go a.downloadModel(info)
		return
	}

	// Активную модель удалять нельзя
	if id == a.speechFactory.CurrentModelID() || id == a.llmFactory.CurrentModelID() {
		a.notifier.Error(i18n.T("error_model_in_use"))
		return
	}

	if err := a.modelManager.Delete(info); err != nil {
		log.Printf("Ошибка удаления модели %s: %v", info.ID, err)
		return
	}

	log.Printf("Модель удалена: %s", info.Name)
	a.tray.SetModelDownloaded(id, false)
	a.notifier.ModelDeleted(info.Name)
}

// downloadModel скачивает модель в фоне и обновляет подменю трея.
// Если распознаватель ещё не был загружен, загрузка моделей
// повторяется.
func (a *App) downloadModel(info models.ModelInfo) {
	log.Printf("Скачивание модели: %s", info.Name)
	a.notifier.DownloadStarted(info.Name)

	if err := a.modelManager.Download(context.Background(), info, nil); err != nil {
		log.Printf("Ошибка скачивания модели %s: %v", info.ID, err)
		a.notifier.Error(i18n.T("error_model_download"))
		return
	}

	a.tray.SetModelDownloaded(info.ID, true)
	a.notifier.DownloadDone(info.Name)

	if !a.speechFactory.IsLoaded() {
		a.loadModels()
	}
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.hotkey != nil {
		a.hotkey.Unregister()
	}

	if a.overlayWin != nil {
		a.overlayWin.Hide()
	}

	if a.recorder != nil {
		a.recorder.Close()
	}

	if a.speechFactory != nil {
		a.speechFactory.Close()
	}

	if a.llmFactory != nil {
		a.llmFactory.Close()
	}
}

// statusSink транслирует события пайплайна в трей, оверлей и уведомления.
type statusSink struct {
	app *App
}

func (s *statusSink) Recording() {
	s.app.tray.SetState(tray.StateRecording)
	s.app.overlayWin.Show()
	s.app.notifier.Recording()
}

func (s *statusSink) Transcribing(preview string) {
	s.app.tray.SetState(tray.StateProcessing)
	if preview == "" {
		s.app.overlayWin.SetState(overlay.StateTranscribing)
		return
	}
	s.app.overlayWin.SetPreview(preview)
}

func (s *statusSink) Polishing() {
	s.app.overlayWin.SetState(overlay.StatePolishing)
}

func (s *statusSink) PolishToken(token string) {
	s.app.overlayWin.AppendToken(token)
}

func (s *statusSink) Injecting() {
	// Прячем оверлей до вставки, чтобы фокус остался в целевом приложении
	s.app.overlayWin.Hide()
}

func (s *statusSink) Done(text string, attempts []inject.Attempt) {
	s.app.tray.SetState(tray.StateIdle)
	s.app.notifier.Success(text)
}

func (s *statusSink) NoSpeech() {
	s.app.tray.SetState(tray.StateIdle)
	s.app.overlayWin.Hide()
	s.app.notifier.Empty()
}

func (s *statusSink) Error(kind session.ErrorKind, err error) {
	log.Printf("Ошибка сессии (%s): %v", kind, err)

	s.app.tray.SetState(tray.StateError)

	switch kind {
	case session.KindInjection:
		s.app.overlayWin.Hide()
		s.app.notifier.ClipboardFallback()
		go dialog.ShowInjectionFailed()
	case session.KindModelUnavailable:
		s.app.overlayWin.Hide()
		s.app.notifier.Error(i18n.T("error_model_not_loaded"))
	case session.KindPermission:
		s.app.overlayWin.Hide()
		go dialog.ShowPermissionRequired()
	default:
		s.app.overlayWin.ShowError(err.Error())
		go func() {
			time.Sleep(errorDisplay)
			s.app.overlayWin.Hide()
		}()
		s.app.notifier.Error(err.Error())
	}

	// Иконка ошибки остаётся видимой, пайплайн при этом уже Idle
	time.AfterFunc(errorDisplay, func() {
		s.app.tray.SetState(tray.StateIdle)
	})
}
