package engine

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Rand is the random source used for shuffles, auto-picks and invite codes.
// *math/rand.Rand satisfies it, which keeps tests deterministic.
type Rand interface {
	Intn(n int) int
}

type cryptoRand struct{}

// Intn returns a uniform value in [0, n) from crypto/rand
func (cryptoRand) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS source is broken
		panic("engine: crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}

// CryptoRand is the default random source
var CryptoRand Rand = cryptoRand{}

func orDefault(rng Rand) Rand {
	if rng == nil {
		return CryptoRand
	}
	return rng
}

// Shuffle returns a uniformly random permutation of ids (Fisher-Yates).
// The input slice is not modified.
func Shuffle(ids []string, rng Rand) []string {
	rng = orDefault(rng)
	out := append([]string(nil), ids...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and collapses anything outside [a-z0-9] into single dashes
func Slug(s string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	if slug == "" {
		return "team"
	}
	return slug
}

// MakeTeamID derives a team id from the owner handle, appending -1, -2, ...
// until it does not collide with any id in taken.
func MakeTeamID(owner string, taken map[string]bool) string {
	base := Slug(owner)
	id := base
	for n := 1; taken[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}

// InviteAlphabet omits characters that are easy to misread (I, O, 0, 1)
const InviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// InviteCodeLength is the number of characters in an invite code
const InviteCodeLength = 6

// GenerateInviteCode returns a code not present in taken
func GenerateInviteCode(taken map[string]bool, rng Rand) string {
	rng = orDefault(rng)
	for {
		var b strings.Builder
		for i := 0; i < InviteCodeLength; i++ {
			b.WriteByte(InviteAlphabet[rng.Intn(len(InviteAlphabet))])
		}
		if code := b.String(); !taken[code] {
			return code
		}
	}
}

// NormalizeInviteCode trims and uppercases a user-entered code
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

const (
	MinLeagueSize     = 2
	MaxLeagueSize     = 16
	DefaultLeagueSize = 10
)

// NormalizeSize clamps a requested league size to [2,16] and makes it even:
// odd values round up, or down when rounding up would exceed the maximum.
// A non-positive request means DefaultLeagueSize. The bool reports whether
// the clamped size had to be evened out.
func NormalizeSize(n int) (int, bool) {
	if n <= 0 {
		n = DefaultLeagueSize
	}
	clamped := min(MaxLeagueSize, max(MinLeagueSize, n))
	size := clamped
	if size%2 != 0 {
		if size+1 <= MaxLeagueSize {
			size++
		} else {
			size--
		}
	}
	return size, size != clamped
}

func sameHandle(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
