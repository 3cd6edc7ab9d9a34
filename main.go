package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sheetscribe/internal/config"
	"sheetscribe/internal/eventbus"
	"sheetscribe/internal/highlight"
	"sheetscribe/internal/logging"
	"sheetscribe/internal/sheet"
	"sheetscribe/internal/transcribe"
	"sheetscribe/internal/ui"
)

// Event types forwarded to the UI for rendering
var uiEvents = []eventbus.EventType{
	eventbus.EventConnectionOpened,
	eventbus.EventConnectionClosed,
	eventbus.EventConnectionFailed,
	eventbus.EventTranscriptUpdated,
	eventbus.EventThresholdChanged,
	eventbus.EventHighlightCompleted,
	eventbus.EventHighlightsCleared,
	eventbus.EventError,
}

func main() {
	var configPath string
	var workbook string
	var sheetName string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&workbook, "workbook", "", "Path to the .xlsx workbook")
	flag.StringVar(&sheetName, "sheet", "", "Worksheet name (default: active sheet)")
	flag.Parse()

	// Load configuration
	configSvc := config.NewConfigService()
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = configSvc.LoadFromPath(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, err = configSvc.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}
	}

	// Flags override the config file
	if workbook == "" && flag.NArg() > 0 {
		workbook = flag.Arg(0)
	}
	if workbook != "" {
		cfg.Workbook = workbook
	}
	if sheetName != "" {
		cfg.Sheet = sheetName
	}
	if cfg.Workbook == "" {
		fmt.Println("Usage: sheetscribe [-config path] [-sheet name] <workbook.xlsx>")
		os.Exit(1)
	}

	// Set up logging
	logger, err := logging.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Printf("Error setting up logging: %v\n", err)
		os.Exit(1)
	}

	// Create event bus
	bus := eventbus.New(logger)

	// Open the workbook
	ws, err := sheet.OpenExcelWorksheet(cfg.Workbook, cfg.Sheet)
	if err != nil {
		fmt.Printf("Error opening workbook: %v\n", err)
		os.Exit(1)
	}
	defer ws.Close()
	logger.Infof("opened %s (sheet %q)", cfg.Workbook, ws.SheetName())

	// Initialize services; both subscribe to bus events on construction
	_ = highlight.NewService(bus, ws, cfg.HighlightColor, logger)
	client := transcribe.NewClient(bus, cfg, logger)
	defer client.Disconnect()

	// Create event channel for the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forwardEvent := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			logger.Warn("event channel full, dropping event")
		}
	}
	for _, et := range uiEvents {
		bus.Subscribe(et, forwardEvent)
	}

	// Create the UI
	uiModel := ui.NewModel(bus, cfg)
	p := tea.NewProgram(uiModel, tea.WithAltScreen())

	// Forward events to the UI in the background
	go func() {
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	// Run the UI
	if _, err := p.Run(); err != nil {
		logger.WithError(err).Error("error running program")
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
