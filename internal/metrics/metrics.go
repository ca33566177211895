// Package metrics exposes the Prometheus instrumentation for the
// server: HTTP traffic, database pool health and a handful of domain
// counters. Everything registers against a private registry so tests
// never trip over duplicate collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hackpoint"

// Registry is the registry behind the /metrics endpoint.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// AppInfo carries build information as labels, value pinned to 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application build information (always 1, details in labels)",
	},
	[]string{"version", "commit"},
)

// EnrollmentsTotal counts enrollment state changes by resulting status.
var EnrollmentsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_total",
		Help:      "Total enrollment writes by resulting status",
	},
	[]string{"status"},
)

// DocumentsIndexed counts document-store writes by index.
var DocumentsIndexed = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_indexed_total",
		Help:      "Total documents written to the document store by index",
	},
	[]string{"index"},
)

// CertificatesIssued counts issued certificates, bulk included.
var CertificatesIssued = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "certificates_issued_total",
		Help:      "Total certificates issued",
	},
)
