package queue

// IngestJobMsg asks the worker to run the ingestion pipeline for one
// document. Source selects where the raw file lives ("s3" or "local").
type IngestJobMsg struct {
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`
	FileName      string `json:"file_name"`
	Source        string `json:"source"`
	Force         bool   `json:"force"`
}

// KNNJobMsg asks the worker to refresh the chunk similarity graph.
type KNNJobMsg struct {
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`
}

// DeleteJobMsg asks the worker to delete a document, its chunks and any
// entities that became orphaned.
type DeleteJobMsg struct {
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`
	FileName      string `json:"file_name"`
}
