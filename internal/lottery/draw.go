package lottery

import (
	"math/rand/v2"
	"sort"

	"solanajackbot/internal/domain"
)

// Draw executes lottery draws for a single pipeline. Each pipeline
// owns its own Draw so the two random sources are never conflated.
//
// A draw generates winPercent distinct sample numbers in [1,100] and
// one independent winning number in [1,100]; the outcome is a win iff
// the winning number lands in the sample set. Because the winning
// number is uniform and the set has exactly winPercent members,
// P(win) = winPercent/100. The two-step structure is kept anyway: the
// sample set is surfaced to users as the auditable "pot of samples",
// it is not an internal detail that can be folded into a coin flip.
type Draw struct {
	pipeline domain.Pipeline
	rng      *rand.Rand
}

// NewDraw creates a draw engine for a pipeline using the given source.
func NewDraw(pipeline domain.Pipeline, src rand.Source) *Draw {
	return &Draw{pipeline: pipeline, rng: rand.New(src)}
}

// Draw runs one lottery draw for the given win percent.
// winPercent is clamped to [0,100]; the sample set can never exceed
// the 100 possible numbers.
func (d *Draw) Draw(winPercent int) domain.LotteryOutcome {
	if winPercent < 0 {
		winPercent = 0
	}
	if winPercent > 100 {
		winPercent = 100
	}

	samples := d.sampleSet(winPercent)
	winning := d.rng.IntN(100) + 1

	win := false
	for _, n := range samples {
		if n == winning {
			win = true
			break
		}
	}

	return domain.LotteryOutcome{
		Pipeline:      d.pipeline,
		WinPercent:    winPercent,
		WinningNumber: winning,
		SampleSet:     samples,
		IsWinner:      win,
	}
}

// sampleSet draws count distinct numbers from [1,100], sorted for
// consistent display.
func (d *Draw) sampleSet(count int) []int {
	seen := make(map[int]struct{}, count)
	samples := make([]int, 0, count)
	for len(samples) < count {
		n := d.rng.IntN(100) + 1
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		samples = append(samples, n)
	}
	sort.Ints(samples)
	return samples
}
