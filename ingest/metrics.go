package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mElements   = promauto.NewCounter(prometheus.CounterOpts{Name: "subschema_ingest_elements_count"})
	mClasses    = promauto.NewCounter(prometheus.CounterOpts{Name: "subschema_ingest_classes_count"})
	mProperties = promauto.NewCounter(prometheus.CounterOpts{Name: "subschema_ingest_properties_count"})
	mDropped    = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "subschema_ingest_dropped_count",
		Help: "Elements left out of the ontology, by reason.",
	}, []string{"reason"})
)
