package ranking

import "time"

// RankingCompletedEvent is published once the match table has been written.
type RankingCompletedEvent struct {
	RunID       string    `json:"run_id"`
	OutputPath  string    `json:"output_path"`
	ArtifactURI string    `json:"artifact_uri,omitempty"`
	Diseases    int       `json:"diseases"`
	Compounds   int       `json:"compounds"`
	Matches     int       `json:"matches"`
	TopN        int       `json:"top_n"`
	Degraded    int       `json:"degraded_enrichments"`
	CompletedAt time.Time `json:"completed_at"`
}

func (e RankingCompletedEvent) EventType() string { return "ranking.completed" }
func (e RankingCompletedEvent) EventKey() string  { return e.RunID }

//Personal.AI order the ending
