package model

type DocumentStatus string

const (
	DocumentStatusUnprocessed DocumentStatus = "unprocessed"
	DocumentStatusCached      DocumentStatus = "cached"
)

// Document summarizes one ingested source, identified by its stable URL key.
// There is no intermediate persisted state: chunks land atomically, so a
// document is either fully cached or not at all.
type Document struct {
	Key        string         `json:"key"`
	Status     DocumentStatus `json:"status"`
	ChunkCount int            `json:"chunk_count"`
}
