package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"multiai/backend"
	"multiai/config"
	"multiai/kv"
	"multiai/model"
	"multiai/storage"
	"multiai/ui"
)

const (
	Version = "v0.01.00"
)

// showStartupError reports a fatal startup problem in a modal and exits.
func showStartupError(title, message string) {
	errorModal := ui.NewErrorModal(title, message)
	p := tea.NewProgram(
		errorModal,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		showStartupError("Configuration Error", fmt.Sprintf("Failed to load config:\n\n%v", err))
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	backendStore, err := kv.Open(ctx, cfg.Storage, cfg.DataDir())
	if err != nil {
		showStartupError("Storage Error", fmt.Sprintf("Failed to open the %s storage backend:\n\n%v", cfg.Storage.Backend, err))
	}
	defer func() {
		if err := backendStore.Close(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to close storage backend: %v", err)
		}
	}()

	storeOpts := []storage.Option{
		storage.WithNormalizer(storage.Normalizer{DefaultModel: cfg.DefaultModel}),
	}
	em, err := cfg.NewEncryptionManager()
	if err != nil {
		showStartupError("Security Error", fmt.Sprintf("Failed to initialize API key encryption:\n\n%v", err))
	}
	if em != nil {
		storeOpts = append(storeOpts, storage.WithCipher(em))
	}
	store := storage.New(backendStore, storeOpts...)

	// No server URL leaves the client on the fallback catalog
	var client model.ChatClient
	if bc, err := backend.NewClient(cfg.ServerURL); err == nil {
		client = bc
	} else if config.DebugLog != nil {
		config.DebugLog.Printf("[Main] Backend disabled: %v", err)
	}

	notices := &model.NoticeQueue{}
	dataModel := model.New(store, client,
		model.WithNotifier(notices),
		model.WithDefaultModel(cfg.DefaultModel),
		model.WithContext(ctx),
	)
	dataModel.EnsureActiveChat()

	keys, err := config.LoadKeybindings(cfg.DataDir())
	if err != nil {
		config.Warnf("failed to load keybindings, using defaults: %v", err)
		keys = config.DefaultKeybindings()
	}

	p := tea.NewProgram(
		ui.NewAppView(dataModel, notices, keys, Version),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running multiai: %v\n", err)
		os.Exit(1)
	}
}
