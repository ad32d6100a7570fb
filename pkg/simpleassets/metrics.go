package simpleassets

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// NewTransitionMetrics registers simpleassets_publish_transitions_total with
// reg and returns a hook that counts every transition by target status.
func NewTransitionMetrics(reg prometheus.Registerer) (StatusChangeHook, error) {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "simpleassets",
		Name:      "publish_transitions_total",
		Help:      "Asset status transitions performed by the publisher",
	}, []string{"status"})

	if err := reg.Register(transitions); err != nil {
		return nil, err
	}

	for _, status := range []AssetStatus{AssetStatusUploading, AssetStatusCompleted, AssetStatusFailed} {
		transitions.WithLabelValues(string(status))
	}

	return func(_ context.Context, _ int64, _, newStatus AssetStatus) {
		transitions.WithLabelValues(string(newStatus)).Inc()
	}, nil
}
