package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/okeri/snmd/internal/connection"
	"github.com/okeri/snmd/internal/dbus"
	"github.com/okeri/snmd/internal/diag"
	"github.com/okeri/snmd/internal/known"
	"github.com/okeri/snmd/internal/manager"
	"github.com/okeri/snmd/internal/metrics"
	"github.com/okeri/snmd/internal/netlink"
	"github.com/okeri/snmd/internal/probe"
)

var (
	debug         = flag.Bool("debug", false, "enable debug logging")
	knownNetworks = flag.String("known-networks", "/etc/snm/networks", "path to the known-network store")
	metricsAddr   = flag.String("metrics-addr", "127.0.0.1:9310", "address to serve /metrics on")
)

func main() {
	flag.Parse()

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	log.Println("snmd starting...")

	diag.CheckSupplicantVersion()

	store, err := known.NewStore(*knownNetworks)
	if err != nil {
		log.Fatalf("load known networks: %v", err)
	}

	core := connection.NewCore(nil)

	met := metrics.New()
	core.Reachability = func(corrID, iface, ip string) {
		probe.Check(corrID, iface, ip, met)
	}

	mgr := manager.New(core, store, met)

	svc, err := dbus.NewService(core, mgr, store)
	if err != nil {
		log.Fatalf("start d-bus service: %v", err)
	}
	defer svc.Close()
	core.SetEmitter(svc)
	log.Printf("d-bus service registered as %s", dbus.ServiceName)

	nlWatcher, err := netlink.NewWatcher(func(string) { core.Registry().Detect() })
	if err != nil {
		log.Printf("netlink watcher unavailable, falling back to sysfs polling only: %v", err)
	} else {
		defer nlWatcher.Close()
		go nlWatcher.Run()
		log.Println("netlink watcher started")
	}

	sampler := metrics.NewTrafficSampler(met, core.Registry().Names)
	go sampler.Run()
	defer sampler.Stop()

	metricsServer := &http.Server{Addr: *metricsAddr, Handler: met.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server: %v", err)
		}
	}()
	defer metricsServer.Close()
	log.Printf("metrics listening on %s", *metricsAddr)

	mgr.Acquire()
	go mgr.Run()
	defer mgr.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Println("snmd ready")
	<-sigChan
	log.Println("shutting down...")
}
