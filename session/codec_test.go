package session

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Now().Unix()
	rec := &Record{
		SessionID: "sid-1",
		Username:  "admin",
		Role:      "admin",
		CreatedAt: now,
		ExpiresAt: now + 3600,
	}

	data, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if decoded.Username != rec.Username || decoded.Role != rec.Role {
		t.Fatalf("identity fields changed across round trip: %+v", decoded)
	}
	if decoded.CreatedAt != rec.CreatedAt || decoded.ExpiresAt != rec.ExpiresAt {
		t.Fatalf("timestamps changed across round trip: %+v", decoded)
	}
}

func TestEncodeEmptyUsername(t *testing.T) {
	rec := &Record{Username: "", Role: "user", CreatedAt: 1, ExpiresAt: 2}

	data, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if decoded.Username != "" {
		t.Fatalf("unexpected username %q", decoded.Username)
	}
}

func TestEncodeRejectsOversizedFields(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	if _, err := Encode(&Record{Username: string(long)}); err == nil {
		t.Fatal("expected oversized username to be rejected")
	}
	if _, err := Encode(&Record{Role: string(long)}); err == nil {
		t.Fatal("expected oversized role to be rejected")
	}
}

func TestDecodeCorruptBlobs(t *testing.T) {
	rec := &Record{Username: "admin", Role: "admin", CreatedAt: 1, ExpiresAt: 2}
	valid, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	cases := map[string][]byte{
		"empty":           {},
		"unknown version": append([]byte{99}, valid[1:]...),
		"truncated":       valid[:len(valid)-4],
		"trailing bytes":  append(append([]byte{}, valid...), 0xff),
	}

	for name, blob := range cases {
		if _, err := Decode(blob); !errors.Is(err, ErrCorruptRecord) {
			t.Fatalf("%s: expected ErrCorruptRecord, got %v", name, err)
		}
	}
}

func TestRecordExpired(t *testing.T) {
	now := time.Now()

	live := &Record{CreatedAt: now.Unix(), ExpiresAt: now.Add(time.Hour).Unix()}
	if live.Expired(now) {
		t.Fatal("expected record with future expiry to be live")
	}

	// A zero timeout yields ExpiresAt == CreatedAt; that record must read
	// as expired even at its own issuance second.
	instant := &Record{CreatedAt: now.Unix(), ExpiresAt: now.Unix()}
	if !instant.Expired(now) {
		t.Fatal("expected zero-timeout record to be expired immediately")
	}

	past := &Record{CreatedAt: now.Add(-2 * time.Hour).Unix(), ExpiresAt: now.Add(-time.Hour).Unix()}
	if !past.Expired(now) {
		t.Fatal("expected record with past expiry to be expired")
	}
}
