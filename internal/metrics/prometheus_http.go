package metrics

import (
	"fmt"
	"io"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// HTTPHandler serves the registry in Prometheus exposition format.
// Watch mode exposes it so long-running rebuild sessions can be
// scraped.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// WriteText dumps every gathered metric to w in the plain text
// exposition format. One-shot builds have no scrape target, so this is
// how their metrics leave the process.
func WriteText(w io.Writer, g prom.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
