package commands

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/ibclight/config"
	"github.com/tendermint/ibclight/libs/log"
	"github.com/tendermint/ibclight/light"
	dbs "github.com/tendermint/ibclight/light/store/db"
)

// registeredMetrics are the light client metrics of the default prometheus
// registry. They can be registered only once per process.
var registeredMetrics *light.Metrics

func metrics(conf *config.Config) *light.Metrics {
	if !conf.Instrumentation.Prometheus {
		return light.NopMetrics()
	}
	if registeredMetrics == nil {
		registeredMetrics = light.PrometheusMetrics(conf.Instrumentation.Namespace)
	}
	return registeredMetrics
}

// openClient opens the client store and returns the client of clientID.
// The returned function closes the store and writes the metrics file.
func openClient(conf *config.Config, logger log.Logger, clientID string) (*light.Client, func() error, error) {
	db, err := dbm.NewDB("clients", dbm.BackendType(conf.DBBackend), conf.DBDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open client store: %w", err)
	}

	c, err := light.NewClient(clientID, dbs.New(db),
		light.Logger(logger),
		light.WithMetrics(metrics(conf)),
	)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	closer := func() error {
		if conf.Instrumentation.Prometheus {
			if err := prometheus.WriteToTextfile(conf.Instrumentation.MetricsPath(), prometheus.DefaultGatherer); err != nil {
				logger.Error("failed to write metrics", "err", err)
			}
		}
		return db.Close()
	}
	return c, closer, nil
}

// closeClient runs closer and reports its error through err, unless err is
// already set.
func closeClient(closer func() error, err *error) {
	if cerr := closer(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close client store: %w", cerr)
	}
}

// readMessage reads a binary encoded client message from path into msg.
func readMessage(path string, msg interface{ Unmarshal([]byte) error }) error {
	bz, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := msg.Unmarshal(bz); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
