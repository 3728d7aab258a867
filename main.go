package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ai-interviewer/internal/client"
	"ai-interviewer/internal/config"
	"ai-interviewer/internal/logging"
	"ai-interviewer/internal/session"
	"ai-interviewer/internal/speech"
	"ai-interviewer/internal/transcript"
	"ai-interviewer/internal/tui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment")
	}

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closer, err := logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to initialise logging: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := client.New(cfg.BackendURL, cfg.RequestTimeout,
		client.WithReportDir(cfg.ReportDir),
		client.WithLogger(logger),
	)

	var player speech.Player
	if !cfg.Speech.Mute {
		if player, err = speech.NewPlayer(); err != nil {
			logger.Warn().Err(err).Msg("audio output unavailable, replies will not be spoken")
			player = nil
		}
	}
	output := speech.NewOutput(backend, player, logger)
	input := speech.NewInput(ctx, cfg.Speech, logger)

	bridge := tui.NewBridge()
	messages := transcript.NewLog()
	messages.Subscribe(bridge.OnTurn)

	controller := session.New(session.Options{
		Backend: backend,
		Speaker: output,
		Reports: backend,
		View:    bridge,
		Log:     messages,
		Logger:  logger,
	})

	listener := speech.NewListener(speech.ListenerOptions{
		Input:     input,
		CanListen: controller.AcceptsInput,
		OnResult:  bridge.OnRecognized,
		OnChange:  bridge.OnListening,
		OnError:   bridge.OnListenError,
		Logger:    logger,
	})
	defer listener.Close()

	status := ""
	if !input.Available() {
		status = input.Status()
	}

	model := tui.NewModel(tui.Deps{
		Ctx:          ctx,
		Session:      controller,
		Listener:     listener,
		SpeechStatus: status,
		Copy:         clipboard.WriteAll,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(program)

	logger.Info().
		Str("backend", cfg.BackendURL).
		Str("sessionId", backend.SessionID()).
		Bool("speechInput", input.Available()).
		Bool("speechOutput", player != nil).
		Msg("interview client started")

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("ui exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if path := cfg.LogFile; path != "" {
		fmt.Printf("Session log written to %s\n", path)
	}
}
