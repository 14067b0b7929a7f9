package team

import (
	"math/rand"
	"strconv"
	"time"
)

// maxPINAttempts caps the collision-rejection loop. On exhaustion the low 6
// digits of the current timestamp are used instead; that fallback is not
// guaranteed unique within the group — an accepted rare-collision risk.
const maxPINAttempts = 100

var nowFunc = time.Now // mockable

func init() {
	rand.Seed(time.Now().UnixNano())
}

// generatePIN returns a uniformly random 6-digit numeric string.
func generatePIN() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}

// GenerateUniquePIN returns a 6-digit PIN not present in taken. PINs are only
// unique within a group, never globally: independent classroom runs may reuse
// them.
func GenerateUniquePIN(taken map[string]bool) string {
	for attempts := 0; attempts < maxPINAttempts; attempts++ {
		pin := generatePIN()
		if !taken[pin] {
			return pin
		}
	}
	ms := strconv.FormatInt(nowFunc().UnixNano()/int64(time.Millisecond), 10)
	return ms[len(ms)-6:]
}

// takenPINs collects the PINs already held by the given teams.
func takenPINs(teams []Team) map[string]bool {
	taken := make(map[string]bool, len(teams))
	for _, t := range teams {
		taken[t.PIN] = true
	}
	return taken
}
