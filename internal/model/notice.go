package model

import "github.com/google/uuid"

type NoticeKind string

const (
	NoticeAddFailed     NoticeKind = "add_failed"
	NoticeSimilarFailed NoticeKind = "similar_failed"
)

// Notice is a failure the user has to be told about.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

type Snapshot struct {
	// Version grows with every state change.
	Version    uint64      `json:"version"`
	Movies     []Movie     `json:"movies"`
	Suggestion *Suggestion `json:"suggestion"`
	Draft      string      `json:"draft"`
	Busy       bool        `json:"busy"`
	// Refreshing lists movies whose poster lookup is in flight.
	Refreshing []uuid.UUID `json:"refreshing"`
}
