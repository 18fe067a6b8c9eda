package projection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/subschema/ontology"
)

var (
	mProjected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subschema_properties_projected_count",
		Help: "Number of properties kept by a projection.",
	})
	mExcluded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "subschema_properties_excluded_count",
		Help: "Number of properties dropped because their domain was not retained.",
	})
	mRangeWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subschema_projection_diagnostics_count",
		Help: "Number of projection warnings, by kind.",
	}, []string{"kind"})
)

func observe(res *Result) {
	mProjected.Add(float64(len(res.Properties)))
	mExcluded.Add(float64(res.Excluded))
	for _, k := range []ontology.Kind{ontology.UnknownRange, ontology.MixedRange} {
		mRangeWarnings.WithLabelValues(k.String()).Add(float64(res.Diagnostics.Count(k)))
	}
}
