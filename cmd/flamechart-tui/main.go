// Command flamechart-tui shows a flame chart in the terminal.
package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"honnef.co/go/flamechart/internal/cli"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
)

func main() {
	f, err := cli.Parse("flamechart-tui", os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	s, err := cli.Start(f)
	if err != nil {
		log.Fatal(err)
	}
	err = run(s)
	s.Close()
	if err != nil {
		log.Fatal(err)
	}
}

func run(s *cli.Session) error {
	opts, err := s.Options()
	if err != nil {
		return err
	}
	// Logs would draw over the UI.
	opts.Logger = nil

	cols, rows := 80, 24
	if term.IsTerminal(os.Stdout.Fd()) {
		if w, h, err := term.GetSize(os.Stdout.Fd()); err == nil {
			cols, rows = w, h
		}
	}
	m, err := newModel(opts, cols, rows)
	if err != nil {
		return err
	}
	_, err = tui.NewProgram(m, tui.WithAltScreen(), tui.WithMouseAllMotion()).Run()
	return err
}
