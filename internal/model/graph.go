package model

import (
	"encoding/json"
	"time"
)

// Node labels.
const (
	LabelPerson = "Person"
	LabelDate   = "Date"
	LabelPlace  = "Place"
)

// EdgeKind is the label of a directed edge.
type EdgeKind string

const (
	EdgeChildOf   EdgeKind = "child_of"
	EdgePartnerOf EdgeKind = "partner_of"
	EdgeBornOn    EdgeKind = "born_on"
	EdgeDeadOn    EdgeKind = "dead_on"
	EdgeBornIn    EdgeKind = "born_in"
)

// ValueEdge reports whether k links a person to one of its value-nodes.
func (k EdgeKind) ValueEdge() bool {
	return k == EdgeBornOn || k == EdgeDeadOn || k == EdgeBornIn
}

// Node is a unit of graph storage.
type Node struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Props     json.RawMessage `json:"props,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Edge is a directed, labeled connection between two nodes.
type Edge struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Kind      EdgeKind  `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
