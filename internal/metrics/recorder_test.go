package metrics

import "time"

type testRecorder struct {
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[string]int
	pages          map[string]int
	references     map[ReferenceLabel]int
	collisions     int
	assetsMapped   int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[string]int{},
		pages:          map[string]int{},
		references:     map[ReferenceLabel]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveBuildDuration(_ time.Duration) { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome string)        { t.buildOutcomes[outcome]++ }
func (t *testRecorder) IncPageRendered(kind string)           { t.pages[kind]++ }
func (t *testRecorder) AddReferences(l ReferenceLabel, n int) { t.references[l] += n }
func (t *testRecorder) IncSlugCollision()                     { t.collisions++ }
func (t *testRecorder) SetAssetsMapped(n int)                 { t.assetsMapped = n }
