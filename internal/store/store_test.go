package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindInternal},
		{"plain", errors.New("disk on fire"), KindInternal},
		{"not found", fmt.Errorf("%w: nft abc", ErrNotFound), KindNotFound},
		{"forbidden", fmt.Errorf("%w: you do not own this NFT", ErrForbidden), KindForbidden},
		{"invalid argument", ErrInvalidArgument, KindInvalidArgument},
		{"invalid state", fmt.Errorf("accept: %w", fmt.Errorf("%w: bid is not active", ErrInvalidState)), KindInvalidState},
		{"insufficient", fmt.Errorf("%w: need 10", ErrInsufficientFunds), KindInsufficientFunds},
		{"race guard", fmt.Errorf("debit: %w", ErrConcurrentModification), KindInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	if got := Message(errors.New("pq: connection refused")); got != "internal error" {
		t.Errorf("Expected internal error to be masked, got %q", got)
	}

	err := fmt.Errorf("%w: bid is not active", ErrInvalidState)
	if got := Message(err); got != "invalid state: bid is not active" {
		t.Errorf("Unexpected message %q", got)
	}
}

func TestRaceGuardIsDistinct(t *testing.T) {
	if errors.Is(ErrConcurrentModification, ErrInsufficientFunds) {
		t.Fatal("Race guard must stay distinguishable from a plain balance failure")
	}
}
