package metricsfx

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/yurykabanov/s3duplicity-backup/pkg/http/middleware"
)

const (
	ConfigServerAddress      = "server.address"
	ConfigServerTimeoutRead  = "server.timeout.read"
	ConfigServerTimeoutWrite = "server.timeout.write"
	ConfigServerLogRequests  = "server.log-requests"
)

// StatusServerConfig configures the read-only status server of the schedule
// command. The server only exists when an address is configured.
type StatusServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogRequests  bool
}

func StatusServerConfigProvider(v *viper.Viper) (*StatusServerConfig, error) {
	config := &StatusServerConfig{
		Address:      v.GetString(ConfigServerAddress),
		ReadTimeout:  v.GetDuration(ConfigServerTimeoutRead),
		WriteTimeout: v.GetDuration(ConfigServerTimeoutWrite),
		LogRequests:  v.GetBool(ConfigServerLogRequests),
	}

	if config.Address == "" {
		return nil, errors.New("status server requires [Server] address")
	}

	return config, nil
}

func StatusRouter() *mux.Router {
	return mux.NewRouter()
}

func StatusServer(
	config *StatusServerConfig,
	logger *logrus.Logger,
	errorLog *log.Logger,
	router *mux.Router,
) *http.Server {
	var h http.Handler = router

	if config.LogRequests {
		h = middleware.WithRequestLogging(h, logger)
	}

	return &http.Server{
		Addr:              config.Address,
		Handler:           middleware.WithRequestId(h, middleware.DefaultRequestIdProvider),
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		ErrorLog:          errorLog,
	}
}

func Listener(config *StatusServerConfig) (net.Listener, error) {
	listener, err := net.Listen("tcp", config.Address)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to listen on %s", config.Address)
	}

	return listener, nil
}

func RunServer(lc fx.Lifecycle, listener net.Listener, server *http.Server, logger *logrus.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.WithField("address", listener.Addr().String()).Info("Serving run status")

			go func() {
				err := server.Serve(listener)
				if err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("Status server stopped")
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
