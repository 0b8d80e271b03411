package util

import "testing"

func TestIngestProgressPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		processed int
		total     int
		want      int
	}{
		{
			name:      "no_chunks_returns_zero",
			processed: 0,
			total:     0,
			want:      0,
		},
		{
			name:      "nothing_processed_returns_zero",
			processed: 0,
			total:     40,
			want:      0,
		},
		{
			name:      "halfway",
			processed: 20,
			total:     40,
			want:      50,
		},
		{
			name:      "rounds_down",
			processed: 1,
			total:     3,
			want:      33,
		},
		{
			name:      "complete",
			processed: 40,
			total:     40,
			want:      100,
		},
		{
			name:      "overshoot_clamps_to_hundred",
			processed: 60,
			total:     40,
			want:      100,
		},
		{
			name:      "negative_total_returns_zero",
			processed: 10,
			total:     -1,
			want:      0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := IngestProgressPercent(tc.processed, tc.total)
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}
