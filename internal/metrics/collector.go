// Package metrics exports tree metrics to Prometheus.
package metrics

import (
	"github.com/LeJamon/goTernaryMerkle/internal/core/tmtree"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tmtree"

// Source yields the metrics to export. *tmtree.Tree satisfies it.
type Source interface {
	Metrics() tmtree.MetricsSnapshot
	LeafCount() int
	NodeCount() int
}

// Collector is a prometheus.Collector reading a Source on every scrape.
type Collector struct {
	src Source

	buildSeconds  *prometheus.Desc
	verifySeconds *prometheus.Desc
	updateSeconds *prometheus.Desc
	verifications *prometheus.Desc
	updates       *prometheus.Desc
	memoryBytes   *prometheus.Desc
	leaves        *prometheus.Desc
	nodes         *prometheus.Desc
}

// NewCollector returns a collector for src. constLabels are attached to every metric.
func NewCollector(src Source, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, constLabels)
	}
	return &Collector{
		src:           src,
		buildSeconds:  desc("last_build_duration_seconds", "Duration of the most recent build."),
		verifySeconds: desc("last_verify_duration_seconds", "Duration of the most recent verification."),
		updateSeconds: desc("last_update_duration_seconds", "Duration of the most recent update or batch update."),
		verifications: desc("verifications_total", "Number of proof verifications."),
		updates:       desc("leaf_updates_total", "Number of leaves rewritten by updates."),
		memoryBytes:   desc("memory_estimate_bytes", "Estimated memory held by nodes and leaf content."),
		leaves:        desc("leaves", "Number of logical leaves."),
		nodes:         desc("nodes", "Number of nodes including padding leaves."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buildSeconds
	ch <- c.verifySeconds
	ch <- c.updateSeconds
	ch <- c.verifications
	ch <- c.updates
	ch <- c.memoryBytes
	ch <- c.leaves
	ch <- c.nodes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.Metrics()

	ch <- prometheus.MustNewConstMetric(c.buildSeconds, prometheus.GaugeValue, m.LastBuildDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(c.verifySeconds, prometheus.GaugeValue, m.LastVerifyDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(c.updateSeconds, prometheus.GaugeValue, m.LastUpdateDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(c.verifications, prometheus.CounterValue, float64(m.VerifyCount))
	ch <- prometheus.MustNewConstMetric(c.updates, prometheus.CounterValue, float64(m.UpdateCount))
	ch <- prometheus.MustNewConstMetric(c.memoryBytes, prometheus.GaugeValue, float64(m.MemoryEstimate))
	ch <- prometheus.MustNewConstMetric(c.leaves, prometheus.GaugeValue, float64(c.src.LeafCount()))
	ch <- prometheus.MustNewConstMetric(c.nodes, prometheus.GaugeValue, float64(c.src.NodeCount()))
}

// NewRegistry returns a registry holding only a collector for src.
func NewRegistry(src Source, constLabels prometheus.Labels) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(src, constLabels)); err != nil {
		return nil, err
	}
	return reg, nil
}
