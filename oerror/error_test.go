package oerror

import (
	"errors"
	"testing"
)

func TestQueryWrapping(t *testing.T) {
	if Query("velocity", nil) != nil {
		t.Fatal("expected nil error to stay nil")
	}

	err := Query("velocity", ErrGone)
	if !IsGone(err) {
		t.Fatalf("expected %v to report gone", err)
	}
	var qe *QueryError
	if !errors.As(err, &qe) || qe.Query != "velocity" {
		t.Fatalf("expected velocity query error, got %v", err)
	}
	if again := Query("velocity", err); again != err {
		t.Fatalf("expected same query error to not be wrapped twice, got %v", again)
	}
	if err.Error() != "query velocity: participant is gone" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNew(t *testing.T) {
	if msg := New("record %d missing", 4).Error(); msg != "record 4 missing" {
		t.Fatalf("unexpected message %q", msg)
	}
}
