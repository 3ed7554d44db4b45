package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSourceTimestampScan(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    SourceTimestamp
		wantErr bool
	}{
		{name: "null", value: nil, want: SourceTimestamp{}},
		{name: "text", value: "2024-03-01 22:30:00", want: NewSourceTimestamp("2024-03-01 22:30:00")},
		{name: "bytes", value: []byte("2024-03-01"), want: NewSourceTimestamp("2024-03-01")},
		{name: "utc time stays naive", value: time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC), want: NewSourceTimestamp("2024-03-01 22:30:00")},
		{name: "fractional seconds", value: time.Date(2024, 3, 1, 22, 30, 0, 500000000, time.UTC), want: NewSourceTimestamp("2024-03-01 22:30:00.5")},
		{name: "offset kept", value: time.Date(2024, 3, 1, 22, 30, 0, 0, time.FixedZone("", -5*60*60)), want: NewSourceTimestamp("2024-03-01T22:30:00-05:00")},
		{name: "unsupported", value: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSourceTimestamp("stale")
			err := got.Scan(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
