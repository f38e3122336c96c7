package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone"`
}

func TestValidateInput(t *testing.T) {
	InitializeServices()

	tests := []struct {
		name    string
		input   sample
		wantErr string
	}{
		{"valid", sample{"alice", "a@b.co", "+91 (98) 765-4321"}, ""},
		{"missing name", sample{"", "a@b.co", "123"}, "name is required"},
		{"long name", sample{"alice bob", "a@b.co", "123"}, "name cannot exceed 5 characters"},
		{"bad email", sample{"alice", "nope", "123"}, "email must be a valid email address"},
		{"bad phone", sample{"alice", "a@b.co", "call me"}, "phone must be a valid phone number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, spm_errors.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected %q in %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("unexpected %q", got)
	}
}

func TestPause(t *testing.T) {
	start := time.Now()
	if err := Pause(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Errorf("returned too early")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Pause(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
