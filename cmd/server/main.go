// The server command is the main entrypoint for running lobbyhub: it loads
// configuration, opens the catalog, and starts the hub's accept loop.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/kestrelworks/lobbyhub"
	"github.com/kestrelworks/lobbyhub/internal/catalog"
	"github.com/kestrelworks/lobbyhub/internal/core"
	"github.com/kestrelworks/lobbyhub/internal/hub"
)

var configFlag = flag.String("config", "./", "Path to the directory containing the server config file")

func main() {
	flag.Parse()

	cfg, err := core.LoadConfig(*configFlag)
	if err != nil {
		fmt.Println("error loading configuration:", err)
		os.Exit(1)
	}

	if err := lobbyhub.InitLogger(cfg.LogFilePath, cfg.LogLevel); err != nil {
		fmt.Println("error initializing logger:", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Catalog.ArtifactDir, 0755); err != nil {
		lobbyhub.Log.WithError(err).Fatal("could not create artifact directory")
	}

	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		lobbyhub.Log.WithError(err).Fatal("could not open catalog")
	}

	h := hub.New(cfg, cat)
	go h.Run()

	addr, err := net.ResolveTCPAddr("tcp", cfg.Address())
	if err != nil {
		lobbyhub.Log.WithError(err).Fatal("could not resolve listen address")
	}
	ln, err := net.ListenTCP("tcp", addr)
	if err != nil {
		lobbyhub.Log.WithError(err).Fatal("could not bind listener")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		lobbyhub.Log.Info("shutting down")
		ln.Close()
		h.Stop()
	}()

	lobbyhub.Log.WithField("address", cfg.Address()).Info("lobbyhub listening")
	if err := h.Serve(ln); err != nil {
		lobbyhub.Log.WithError(err).Info("accept loop exited")
	}
}
