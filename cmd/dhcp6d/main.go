// Command dhcp6d is a DHCPv6 server: protocol handling, the configurable
// filter/handler pipeline, and the leasequery store assembled from a single
// declarative configuration document.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/dhcp6kit/dhcp6d/config"
	"github.com/dhcp6kit/dhcp6d/registry"
	"github.com/dhcp6kit/dhcp6d/server"
)

var configPath = flag.String("config", "", "path to the JSON configuration document")

func main() {
	flag.Parse()
	flag.Lookup("logtostderr").Value.Set("true")

	if *configPath == "" {
		glog.Fatal("dhcp6d: -config is required")
	}

	registry.LoadAllExtensions()

	doc, err := config.Load(*configPath)
	if err != nil {
		glog.Fatalf("dhcp6d: failed to load configuration: %v", err)
	}
	built, err := config.Build(doc)
	if err != nil {
		glog.Fatalf("dhcp6d: failed to build configuration: %v", err)
	}

	maxExceptions := doc.Server.MaxExceptions
	if maxExceptions <= 0 {
		maxExceptions = 10
	}
	exceptionWindow := time.Second
	if doc.Server.ExceptionWindow != "" {
		if d, err := time.ParseDuration(doc.Server.ExceptionWindow); err == nil {
			exceptionWindow = d
		}
	}

	shutdown := make(chan struct{})
	go watchExceptionWindow(built, maxExceptions, exceptionWindow, shutdown)

	broadcaster, err := config.Watch(*configPath)
	if err != nil {
		glog.Warningf("dhcp6d: configuration file watch disabled: %v", err)
	}
	var reload <-chan *config.Document
	if broadcaster != nil {
		reload = broadcaster.NewReceiver()
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	for _, srv := range built.Servers {
		go func(srv *server.Server) {
			if err := srv.ListenAndServe(); err != nil {
				glog.Errorf("dhcp6d: listener on %s exited: %v", srv.Iface, err)
			}
		}(srv)
	}
	glog.Infof("dhcp6d: serving %d interface(s)", len(built.Servers))

	for {
		select {
		case doc := <-reload:
			reloadConfiguration(built, doc)
		case sig := <-signalCh:
			if sig == syscall.SIGHUP {
				glog.Info("dhcp6d: SIGHUP received, reloading configuration")
				doc, err := config.Load(*configPath)
				if err != nil {
					glog.Errorf("dhcp6d: SIGHUP reload failed: %v", err)
					continue
				}
				reloadConfiguration(built, doc)
				continue
			}
			glog.Infof("dhcp6d: received %v, draining and exiting", sig)
			closeStore(built)
			return
		case <-shutdown:
			glog.Error("dhcp6d: exception window exceeded, shutting down")
			closeStore(built)
			return
		}
	}
}

// reloadConfiguration rebuilds the filter/handler graph from doc and
// swaps it into every listener under its write-lock on SIGHUP. The
// leasequery store and interface bindings are not re-created on reload;
// only the dispatcher's handler/filter graph, rapid-commit policy, and
// server DUID are live-swappable this way.
func reloadConfiguration(built *config.Built, doc *config.Document) {
	rebuilt, err := config.Build(doc)
	if err != nil {
		glog.Errorf("dhcp6d: configuration reload rejected: %v", err)
		return
	}
	for _, srv := range built.Servers {
		srv.SetDispatcher(rebuilt.Dispatcher)
	}
	glog.Info("dhcp6d: configuration reloaded")
}

func closeStore(built *config.Built) {
	if closer, ok := built.Store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			glog.Warningf("dhcp6d: error closing leasequery store: %v", err)
		}
	}
}

// watchExceptionWindow samples the dispatcher's handling-error count once
// per window and triggers orderly shutdown once the errors counted within
// one interval exceed maxExceptions. The intervals are consecutive and do
// not overlap, so errors on either side of an interval boundary are counted
// separately.
func watchExceptionWindow(built *config.Built, maxExceptions int, window time.Duration, shutdown chan<- struct{}) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	var last uint64
	for range ticker.C {
		snap := built.Dispatcher.Stats.Export()
		delta := snap.Errored - last
		last = snap.Errored
		if delta > uint64(maxExceptions) {
			close(shutdown)
			return
		}
	}
}
