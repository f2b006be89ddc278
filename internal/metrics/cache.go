package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/trackr-identity/internal/cache"
)

// cacheCollector expone las Stats del cache de perfiles en cada scrape.
type cacheCollector struct {
	stats   func(ctx context.Context) (cache.Stats, error)
	timeout time.Duration

	keysDesc   *prometheus.Desc
	hitsDesc   *prometheus.Desc
	missesDesc *prometheus.Desc
}

// RegisterCache registra un collector sobre c.Stats. Un error de Stats
// (ej: redis caído) deja el scrape sin estas series.
func RegisterCache(reg prometheus.Registerer, c cache.Client) error {
	if c == nil {
		return nil
	}
	return register(reg, &cacheCollector{
		stats:      c.Stats,
		timeout:    time.Second,
		keysDesc:   prometheus.NewDesc("trackr_cache_keys", "Keys en el cache", []string{"driver"}, nil),
		hitsDesc:   prometheus.NewDesc("trackr_cache_hits_total", "Hits del cache", []string{"driver"}, nil),
		missesDesc: prometheus.NewDesc("trackr_cache_misses_total", "Misses del cache", []string{"driver"}, nil),
	})
}

func (c *cacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keysDesc
	ch <- c.hitsDesc
	ch <- c.missesDesc
}

func (c *cacheCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	st, err := c.stats(ctx)
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.keysDesc, prometheus.GaugeValue, float64(st.Keys), st.Driver)
	ch <- prometheus.MustNewConstMetric(c.hitsDesc, prometheus.CounterValue, float64(st.Hits), st.Driver)
	ch <- prometheus.MustNewConstMetric(c.missesDesc, prometheus.CounterValue, float64(st.Misses), st.Driver)
}
