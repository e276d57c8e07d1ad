package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  string
		want  string
	}{
		{
			name:  "transfer",
			event: "event-updated",
			data:  `{"type":"currency_transferred","player_id":"p_1","currency_pot":500,"total":2000,"total_players":1,"transfer":{"player_id":"p_1","delta":-500,"player_before":2000,"player_after":1500,"pot_before":0,"pot_after":500}}`,
			want:  "currency_transferred p_1 -500 (2000 -> 1500) | pot 500, total 2000, players 1",
		},
		{
			name:  "event level change",
			event: "event-updated",
			data:  `{"type":"pot_funded","currency_pot":300,"total":4300,"total_players":2}`,
			want:  "pot_funded | pot 300, total 4300, players 2",
		},
		{
			name:  "other event passes through",
			event: "connected",
			data:  `{"date":"2025-05-01"}`,
			want:  `connected: {"date":"2025-05-01"}`,
		},
		{
			name:  "malformed change passes through",
			event: "event-updated",
			data:  "not json",
			want:  "event-updated: not json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeEvent(tt.event, tt.data))
		})
	}
}
