package pipeline

type Stage int

const (
	StageIdle Stage = iota
	StageLoadingSources
	StageFetching
	StageFiltering
	StageDeduping
	StageFormatting
	StageBatching
	StageDelivering
	StagePersistingCache
	StageDone
)

var stageNames = [...]string{
	StageIdle:            "idle",
	StageLoadingSources:  "loading_sources",
	StageFetching:        "fetching",
	StageFiltering:       "filtering",
	StageDeduping:        "deduping",
	StageFormatting:      "formatting",
	StageBatching:        "batching",
	StageDelivering:      "delivering",
	StagePersistingCache: "persisting_cache",
	StageDone:            "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
