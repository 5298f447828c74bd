package molecule

import "time"

// DomainEvent is implemented by every event the pipeline publishes.
type DomainEvent interface {
	EventType() string
	// EventKey is used as the partition key when the event is published.
	EventKey() string
}

// ChunkCommittedEvent is published after a chunk of records has been
// durably appended to the dataset.
type ChunkCommittedEvent struct {
	RunID       string    `json:"run_id"`
	DatasetPath string    `json:"dataset_path"`
	Offset      int       `json:"offset"`
	Accepted    int       `json:"accepted"`
	Rejected    int       `json:"rejected"`
	Written     int       `json:"written"`
	Target      int       `json:"target"`
	IDs         []string  `json:"ids"`
	CommittedAt time.Time `json:"committed_at"`
}

func (e ChunkCommittedEvent) EventType() string { return "ingest.chunk_committed" }
func (e ChunkCommittedEvent) EventKey() string  { return e.RunID }

// IngestFinishedEvent is published when an ingestion run stops.
type IngestFinishedEvent struct {
	RunID      string    `json:"run_id"`
	Written    int       `json:"written"`
	Added      int       `json:"added"`
	Target     int       `json:"target"`
	Exhausted  bool      `json:"catalog_exhausted"`
	FinishedAt time.Time `json:"finished_at"`
}

func (e IngestFinishedEvent) EventType() string { return "ingest.finished" }
func (e IngestFinishedEvent) EventKey() string  { return e.RunID }

//Personal.AI order the ending
