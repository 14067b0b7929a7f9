package team

import (
	"math/rand"
	"strconv"
	"testing"
	"time"
)

func TestGeneratePIN(t *testing.T) {
	for i := 0; i < 1000; i++ {
		pin := generatePIN()
		if len(pin) != 6 {
			t.Fatalf("generatePIN() = %q; want 6 digits", pin)
		}
		n, err := strconv.Atoi(pin)
		if err != nil {
			t.Fatalf("generatePIN() = %q; not numeric: %v", pin, err)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("generatePIN() = %d; out of range", n)
		}
	}
}

func TestGenerateUniquePIN(t *testing.T) {
	t.Run("avoids taken PINs", func(t *testing.T) {
		rand.Seed(42)
		taken := map[string]bool{generatePIN(): true, generatePIN(): true}

		rand.Seed(42)
		pin := GenerateUniquePIN(taken)
		if taken[pin] {
			t.Errorf("GenerateUniquePIN() = %q; already taken", pin)
		}
	})

	t.Run("timestamp fallback on exhaustion", func(t *testing.T) {
		// pre-compute the exact PIN sequence the generator will produce so
		// every attempt collides
		rand.Seed(42)
		taken := make(map[string]bool, maxPINAttempts)
		for i := 0; i < maxPINAttempts; i++ {
			taken[generatePIN()] = true
		}

		now := time.Date(2025, 3, 14, 15, 9, 26, 535e6, time.UTC)
		nowFunc = func() time.Time { return now }
		defer func() { nowFunc = time.Now }()

		rand.Seed(42)
		pin := GenerateUniquePIN(taken)

		ms := strconv.FormatInt(now.UnixNano()/int64(time.Millisecond), 10)
		if want := ms[len(ms)-6:]; pin != want {
			t.Errorf("GenerateUniquePIN() = %q; want fallback %q", pin, want)
		}
	})
}

func TestTakenPINs(t *testing.T) {
	teams := []Team{{PIN: "123456"}, {PIN: "654321"}}
	taken := takenPINs(teams)
	if len(taken) != 2 || !taken["123456"] || !taken["654321"] {
		t.Errorf("takenPINs() = %v", taken)
	}
}
