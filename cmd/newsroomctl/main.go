// Command newsroomctl is an operator terminal UI for the newsroomd
// control surface: live source/breaker status, daily quota remaining,
// and manual batch-trigger/breaker-reset controls.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	controlURL := flag.String("url", "http://localhost:8090", "newsroomd control surface URL")
	flag.Parse()

	m := NewModel(*controlURL)
	program := tea.NewProgram(m)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("newsroomctl: %v\n", err)
		os.Exit(1)
	}
}
