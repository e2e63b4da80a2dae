// Command flamechart shows a flame chart in a window.
package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"honnef.co/go/flamechart"
	"honnef.co/go/flamechart/event"
	"honnef.co/go/flamechart/internal/cli"

	"gioui.org/app"
	"gioui.org/unit"
	"go.uber.org/zap"
)

func main() {
	f, err := cli.Parse("flamechart", os.Args[1:], os.Stderr)
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
	opts, err := s.Options()
	if err != nil {
		s.Close()
		log.Fatal(err)
	}

	go func() {
		w := app.NewWindow(app.Title("flamechart: "+f.Input), app.Size(unit.Dp(1200), unit.Dp(800)))
		err := run(w, opts, s.Log)
		s.Close()
		if err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func run(w *app.Window, opts flamechart.Options, l *zap.Logger) error {
	v, err := newViewer(w, opts)
	if err != nil {
		return err
	}
	v.fc.OnSelect(func(sel event.Selection) {
		l.Info("selected", zap.String("kind", string(sel.Kind)), zap.Any("node", sel.Node))
	})
	return v.loop()
}
