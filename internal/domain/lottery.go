package domain

// Pipeline identifies which of the two independent draw pipelines
// produced an outcome.
type Pipeline string

const (
	PipelineTrade  Pipeline = "trade"
	PipelineHolder Pipeline = "holder"
)

// String returns the string representation of Pipeline.
func (p Pipeline) String() string {
	return string(p)
}

// IsValid checks if the pipeline is a valid value.
func (p Pipeline) IsValid() bool {
	return p == PipelineTrade || p == PipelineHolder
}

// LotteryOutcome is the result of one draw. Created once per trade
// event and pipeline; immutable after creation.
//
// Invariants: IsWinner == (WinningNumber is in SampleSet),
// len(SampleSet) == min(WinPercent, 100), all members distinct
// integers in [1,100], sorted ascending.
type LotteryOutcome struct {
	Pipeline      Pipeline
	WinPercent    int   // configured chance used for this draw
	WinningNumber int   // independently drawn, [1,100]
	SampleSet     []int // the "pot of samples" shown to users as proof of fairness
	IsWinner      bool
}
