package merge

import "time"

// Source identifies one merge input.
type Source struct {
	// Label is the stable label used for conflict attribution, derived from
	// the file's content fingerprint.
	Label string `json:"label"`

	// Fingerprint is the full content fingerprint of the input.
	Fingerprint string `json:"fingerprint"`

	// ReportingEntity is the input's reporting entity node id, if set.
	ReportingEntity string `json:"reporting_entity,omitempty"`
}

// Metadata is the provenance record a merge or update run emits alongside
// its output file.
type Metadata struct {
	OperationID string    `json:"operation_id"`
	Operation   string    `json:"operation"`
	Timestamp   time.Time `json:"timestamp"`
	Sources     []Source  `json:"sources"`

	NodesIn  int `json:"nodes_in"`
	NodesOut int `json:"nodes_out"`
	EdgesIn  int `json:"edges_in"`
	EdgesOut int `json:"edges_out"`

	// GroupsMerged counts merge groups with more than one member.
	GroupsMerged  int `json:"groups_merged"`
	ConflictCount int `json:"conflict_count"`
	WarningCount  int `json:"warning_count"`
}
