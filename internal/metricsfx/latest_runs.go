package metricsfx

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
	"github.com/yurykabanov/s3duplicity-backup/pkg/http/handler"
)

func RunsStatusHandler(
	logger *logrus.Logger,
	rules []domain.Rule,
	repository handler.OutcomeRepository,
) *handler.RunsStatusHandler {
	return handler.NewRunsStatusHandler(logger, rules, repository)
}

func RegisterRunsStatusHandler(router *mux.Router, h *handler.RunsStatusHandler) {
	router.Handle("/status/runs", h).Methods(http.MethodGet)
}
