package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueWindow(t *testing.T) {
	due := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		window       DueWindow
		expectedLast int
		expectedDate string
	}{
		{name: "empty", window: DueWindow{}, expectedLast: 0, expectedDate: NotApplicable},
		{name: "single bill", window: DueWindow{FirstBillSeqNum: 4, BillCount: 1, DueDate: due}, expectedLast: 4, expectedDate: "2024-01-15T00:00:00Z"},
		{name: "three bills", window: DueWindow{FirstBillSeqNum: 2, BillCount: 3, DueDate: due}, expectedLast: 4, expectedDate: "2024-01-15T00:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedLast, tt.window.LastBillSeqNum())
			assert.Equal(t, tt.expectedDate, tt.window.DueDateString())
		})
	}
}
