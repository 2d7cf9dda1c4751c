package app

import (
	"errors"
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2024, 3, 15, 7, 30, 5, 0, time.FixedZone("BRT", -3*60*60))

	op := NewOperation("SavePurchase", now)

	if op.ID != "20240315T103005Z" {
		t.Errorf("ID = %q, want the UTC timestamp", op.ID)
	}
	if op.Command != "SavePurchase" {
		t.Errorf("Command = %q, want %q", op.Command, "SavePurchase")
	}
	if op.Status != "success" {
		t.Errorf("Status = %q, want %q", op.Status, "success")
	}
	if !op.StartedAt.Equal(now) {
		t.Errorf("StartedAt = %v, want %v", op.StartedAt, now)
	}
}

func TestOperation_Fail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
		wantErr    string
	}{
		{name: "nil error keeps success", err: nil, wantStatus: "success"},
		{name: "error marks failure", err: errors.New("disk full"), wantStatus: "error", wantErr: "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation("AddProduct", time.Now())
			op.Fail(tt.err)
			if op.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", op.Status, tt.wantStatus)
			}
			if op.Err != tt.wantErr {
				t.Errorf("Err = %q, want %q", op.Err, tt.wantErr)
			}
		})
	}
}

func TestOperation_Duration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	op := NewOperation("Backup", start)

	got := op.Duration(start.Add(1500*time.Millisecond + 300*time.Microsecond))
	if got != 1500*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.5s", got)
	}
}
