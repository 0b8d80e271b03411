package util

// IngestProgressPercent returns how far an ingestion run has come, in
// whole percent. A document without chunks reports 0, processed counts
// above the total clamp to 100.
func IngestProgressPercent(processed, total int) int {
	if total <= 0 || processed <= 0 {
		return 0
	}
	if processed >= total {
		return 100
	}
	return processed * 100 / total
}
