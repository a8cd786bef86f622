package signs

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ArtoLord/enoa-sign-roller/models"
)

// Domain rejections produced by ValidateInfluence. The router maps
// each one to its own localized user-facing message.
var (
	ErrNoSignToday            = errors.New("no sign exists today")
	ErrAlreadyResolved        = errors.New("sign is already resolved")
	ErrCreatorCannotInfluence = errors.New("sign creator cannot influence it")
)

// ErrUnknownSign marks a sign id persisted in the store but missing
// from the catalog: a deployment inconsistency between catalog
// versions, not a per-request condition.
var ErrUnknownSign = errors.New("sign id is not in the catalog")

// AttemptResult is the outcome of one influence attempt.
type AttemptResult struct {
	Success      bool
	NewPower     int
	PowerChanged bool
}

// Engine holds the pure sign lifecycle decisions. It performs no I/O:
// all state is handed in and decisions are handed back.
type Engine struct {
	catalog *Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine over the given catalog, seeded from the
// wall clock.
func NewEngine(catalog *Catalog) *Engine {
	return NewEngineWithSource(catalog, rand.NewSource(time.Now().UnixNano()))
}

// NewEngineWithSource lets tests inject a deterministic random source.
func NewEngineWithSource(catalog *Catalog, src rand.Source) *Engine {
	return &Engine{catalog: catalog, rng: rand.New(src)}
}

// RollSignID draws four d4 faces and joins them in ascending order, so
// every combination maps to one canonical id like "1234".
func (e *Engine) RollSignID() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	faces := make([]int, 4)
	for i := range faces {
		faces[i] = e.rng.Intn(4) + 1
	}
	sort.Ints(faces)

	var b strings.Builder
	for _, f := range faces {
		b.WriteString(strconv.Itoa(f))
	}
	return b.String()
}

// ResolveAttempt rolls a d20, adds the shaman modifier
// floor(power/2)-5 and compares against the sign's difficulty.
// Success decrements power with probability 1/2; failure always
// increments it. The change is at most one unit per attempt.
func (e *Engine) ResolveAttempt(power, difficulty int) AttemptResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	modifier := power/2 - 5
	roll := e.rng.Intn(20) + 1

	if roll+modifier >= difficulty {
		res := AttemptResult{Success: true, NewPower: power}
		if e.rng.Intn(2) == 0 {
			res.NewPower--
			res.PowerChanged = true
		}
		return res
	}
	return AttemptResult{Success: false, NewPower: power + 1, PowerChanged: true}
}

// ValidateInfluence checks whether actorID may influence the given
// sign. It runs before the store transition as a fast path and again
// after a store conflict to derive the specific rejection reason.
func (e *Engine) ValidateInfluence(sign *models.GuildSign, actorID string) error {
	if sign == nil {
		return ErrNoSignToday
	}
	if sign.State.Resolved() {
		return ErrAlreadyResolved
	}
	if sign.CreatedBy == actorID {
		return ErrCreatorCannotInfluence
	}
	return nil
}

// DifficultyFor looks up the difficulty threshold of a sign. The
// catalog is expected to be a superset of every id ever persisted, so
// a miss is reported as ErrUnknownSign.
func (e *Engine) DifficultyFor(signID string) (int, error) {
	def, ok := e.catalog.Get(signID)
	if !ok {
		return 0, fmt.Errorf("difficulty for %q: %w", signID, ErrUnknownSign)
	}
	return def.Difficulty, nil
}
