package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("parse", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("parse", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.IncPageRendered("hub")
	pr.AddReferences(ReferenceFuzzy, 3)
	pr.IncSlugCollision()
	pr.SetAssetsMapped(42)
	if pr.Registry() != reg {
		t.Fatalf("Registry() must return the registry the metrics were registered in")
	}
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}
