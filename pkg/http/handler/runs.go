package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/s3duplicity-backup/pkg/appcontext"
	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
)

type OutcomeRepository interface {
	FindLatest(context.Context) ([]domain.Outcome, error)
}

type RunsStatusHandler struct {
	logger logrus.FieldLogger
	rules  []domain.Rule
	repo   OutcomeRepository
}

func NewRunsStatusHandler(logger logrus.FieldLogger, rules []domain.Rule, repo OutcomeRepository) *RunsStatusHandler {
	return &RunsStatusHandler{
		logger: logger,
		rules:  rules,
		repo:   repo,
	}
}

type runStatusResponse struct {
	Operation  string   `json:"operation"`
	Rules      []string `json:"rules"`
	Status     string   `json:"status"`
	ExitCode   int      `json:"exit_code"`
	Command    string   `json:"command"`
	StartedAt  int64    `json:"started_at_mtime"`
	DurationMs int64    `json:"duration_ms"`
}

func (h *RunsStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	logger := appcontext.LoggerFromContext(h.logger, ctx)

	outcomes, err := h.repo.FindLatest(ctx)
	if err != nil {
		logger.WithError(err).Error("Unable to query latest outcomes")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	result := make([]runStatusResponse, 0, len(outcomes))

	for _, o := range outcomes {
		result = append(result, runStatusResponse{
			Operation:  o.Operation.String(),
			Rules:      h.rulesFor(o.Operation),
			Status:     o.Status.String(),
			ExitCode:   o.ExitCode,
			Command:    o.CommandLine(),
			StartedAt:  o.StartedAt.UnixNano() / 1e6,
			DurationMs: o.Duration().Nanoseconds() / 1e6,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	err = enc.Encode(result)
	if err != nil {
		logger.WithError(err).Error("Unable to encode response")
	}
}

func (h *RunsStatusHandler) rulesFor(op domain.Operation) []string {
	names := []string{}

	for _, rule := range h.rules {
		if rule.Operation == op {
			names = append(names, rule.Name)
		}
	}

	return names
}
