package gameid

import (
	"strings"
	"testing"
	"time"

	"github.com/lox/piblackjack/internal/randutil"
)

func TestGenerate(t *testing.T) {
	id := Generate(time.Now())

	if len(id) != 26 {
		t.Errorf("expected 26 characters, got %d", len(id))
	}
	if err := Validate(id); err != nil {
		t.Errorf("generated ID failed validation: %v", err)
	}
}

func TestGenerateUnique(t *testing.T) {
	ids := make(map[string]bool)
	now := time.Now()

	for i := 0; i < 100; i++ {
		id := Generate(now)
		if ids[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestGenerateTimeSorted(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	var ids []string
	for i := 0; i < 10; i++ {
		ids = append(ids, Generate(start.Add(time.Duration(i)*time.Millisecond)))
	}

	for i := 1; i < len(ids); i++ {
		if strings.Compare(ids[i-1], ids[i]) >= 0 {
			t.Errorf("IDs not sorted: %s >= %s", ids[i-1], ids[i])
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	started := time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)
	id := Generate(started)

	got, err := Timestamp(id)
	if err != nil {
		t.Fatalf("Timestamp() error = %v", err)
	}
	if !got.Equal(started) {
		t.Errorf("Timestamp() = %v, want %v", got, started)
	}

	if _, err := Timestamp("not-an-id"); err == nil {
		t.Error("Timestamp() accepted an invalid ID")
	}
}

func TestGenerateWithRandSourceIsDeterministic(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	id1 := GenerateWithRandSource(now, randutil.New(42))
	id2 := GenerateWithRandSource(now, randutil.New(42))
	id3 := GenerateWithRandSource(now, randutil.New(43))

	if id1 != id2 {
		t.Errorf("same seed produced %s and %s", id1, id2)
	}
	if id1 == id3 {
		t.Errorf("different seeds both produced %s", id1)
	}
	if err := Validate(id1); err != nil {
		t.Errorf("generated ID failed validation: %v", err)
	}
}

func TestVersionAndVariantBits(t *testing.T) {
	data, err := decodeBase32(GenerateWithRandSource(time.Now(), randutil.New(1)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data[6]>>4 != 7 {
		t.Errorf("version nibble = %d, want 7", data[6]>>4)
	}
	if data[8]>>6 != 2 {
		t.Errorf("variant bits = %b, want 10", data[8]>>6)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{
			name:    "valid ID",
			id:      "01h5n0et5q6mt3v7ms1234abcd",
			wantErr: false,
		},
		{
			name:    "too short",
			id:      "01h5n0et5q6mt3v7ms123",
			wantErr: true,
		},
		{
			name:    "too long",
			id:      "01h5n0et5q6mt3v7ms1234abcdef",
			wantErr: true,
		},
		{
			name:    "first char too high",
			id:      "81h5n0et5q6mt3v7ms1234abcd",
			wantErr: true,
		},
		{
			name:    "invalid character",
			id:      "01h5n0et5q6mt3v7ms1234abci",
			wantErr: true,
		},
		{
			name:    "uppercase not allowed",
			id:      "01H5N0ET5Q6MT3V7MS1234ABCD",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAlphabet(t *testing.T) {
	if len(alphabet) != 32 {
		t.Errorf("alphabet should have 32 characters, got %d", len(alphabet))
	}

	seen := make(map[rune]bool)
	for _, char := range alphabet {
		if seen[char] {
			t.Errorf("duplicate character in alphabet: %c", char)
		}
		seen[char] = true
	}

	for _, char := range "ilou" {
		if strings.ContainsRune(alphabet, char) {
			t.Errorf("alphabet should not contain %c", char)
		}
	}
}
