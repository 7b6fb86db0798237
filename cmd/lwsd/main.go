package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/idwallet/lwsd/internal/config"
	"github.com/idwallet/lwsd/internal/core/application"
	wsinterface "github.com/idwallet/lwsd/internal/interfaces/ws"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	app = &cobra.Command{
		Use:           "lwsd",
		Short:         "local wallet service daemon",
		Long:          "lwsd serves the wallets of this machine to the browser extension over a local WebSocket",
		Version:       formatVersion(),
		RunE:          action,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flagsByKey = map[string]string{
		config.DatadirKey:     "datadir",
		config.WSHostKey:      "host",
		config.WSPortKey:      "port",
		config.LogLevelKey:    "log-level",
		config.DBTypeKey:      "db-type",
		config.MetricsAddrKey: "metrics-addr",
	}
)

func init() {
	flags := app.Flags()
	flags.String("datadir", config.GetDatadir(), "data directory")
	flags.String("host", config.GetString(config.WSHostKey), "host the ws interface binds to")
	flags.Int("port", config.GetInt(config.WSPortKey), "first port the ws interface tries to listen on")
	flags.Int("log-level", config.GetInt(config.LogLevelKey), "logrus log level")
	flags.String("db-type", config.GetString(config.DBTypeKey), "database type (badger|inmemory)")
	flags.String("metrics-addr", config.GetString(config.MetricsAddrKey), "address to serve prometheus metrics on")

	vip := config.Viper()
	for key, flag := range flagsByKey {
		if err := vip.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatal(err)
		}
	}
}

func main() {
	if err := app.Execute(); err != nil {
		log.Fatal(err)
	}
}

func action(_ *cobra.Command, _ []string) error {
	if err := config.InitConfig(); err != nil {
		return err
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	appConfig := &application.Config{
		DBType:              config.GetString(config.DBTypeKey),
		DBDir:               config.GetDbDir(),
		KeystoreDir:         config.GetKeystoreDir(),
		RPRequestTimeout:    config.GetDuration(config.RPRequestTimeoutKey),
		RPRequestsPerSecond: config.GetInt(config.RPRequestsPerSecondKey),
		ActionLogURL:        config.GetString(config.ActionLogURLKey),
		ActionLogSecret:     config.GetString(config.ActionLogSecretKey),
		Version:             version,
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}
	defer appConfig.RepoManager().Close()

	wsSvc, err := wsinterface.NewService(wsinterface.ServiceOpts{
		Host:              config.GetString(config.WSHostKey),
		Port:              config.GetInt(config.WSPortKey),
		PortRetryInterval: config.GetDuration(config.PortRetryIntervalKey),
		IPWhitelist:       config.GetStringSlice(config.WSIPWhitelistKey),
		OriginWhitelist:   config.GetStringSlice(config.WSOriginsWhitelistKey),
		MaxConnections:    config.GetInt(config.MaxConnectionsKey),
		AcceptRate:        config.GetFloat(config.AcceptRateKey),
		AcceptBurst:       config.GetInt(config.AcceptBurstKey),
		TLSKey:            config.GetString(config.TLSKeyKey),
		TLSCert:           config.GetString(config.TLSCertKey),
		LWSSvc:            appConfig.LWSService(),
	})
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	// Start blocks while waiting for a free port, a signal must stop it.
	stopped := make(chan struct{})
	go func() {
		<-sigChan
		log.Info("shutting down daemon")
		wsSvc.Stop()
		close(stopped)
	}()

	log.Debug("starting daemon")

	if err := wsSvc.Start(); err != nil {
		if errors.Is(err, wsinterface.ErrServiceStopped) {
			return nil
		}
		return err
	}

	metricsServer := startMetricsServer(config.GetString(config.MetricsAddrKey))

	log.Infof("lwsd %s started", version)

	<-stopped

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("failed to stop metrics server")
		}
	}

	log.Debug("exiting")
	return nil
}

func startMetricsServer(addr string) *http.Server {
	if len(addr) <= 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	log.Infof("metrics served on %s/metrics", addr)
	return server
}

func formatVersion() string {
	return fmt.Sprintf(
		"Version: %s\nCommit: %s\nDate: %s",
		version, commit, date,
	)
}
