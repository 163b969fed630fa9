package job

import "errors"

// ErrInvalidDefaultBatch indicates the configured default batch size is not positive.
var ErrInvalidDefaultBatch = errors.New("default batch size must be positive")

const (
	// DefaultBatchSize is the batch size used when a poll omits a limit.
	DefaultBatchSize = 5
	// MaxBatchSize caps what a single poll may request.
	MaxBatchSize = 5
)

// BatchSource identifies how a batch size was resolved.
type BatchSource string

const (
	// BatchSourceExplicit indicates the caller supplied a value within bounds.
	BatchSourceExplicit BatchSource = "explicit"
	// BatchSourceDefault indicates the default size was used.
	BatchSourceDefault BatchSource = "default"
	// BatchSourceClamped indicates the requested size was clamped to the maximum.
	BatchSourceClamped BatchSource = "clamped"
)

// BatchPolicy normalises batch sizes for pending-job polls. Workers may ask
// for any limit; the policy keeps the effective size within [1, max].
type BatchPolicy struct {
	defaultSize int
	maxSize     int
}

// NewBatchPolicy constructs a BatchPolicy. A non-positive max falls back to
// the default size.
func NewBatchPolicy(defaultSize, maxSize int) (*BatchPolicy, error) {
	if defaultSize <= 0 {
		return nil, ErrInvalidDefaultBatch
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	return &BatchPolicy{defaultSize: defaultSize, maxSize: maxSize}, nil
}

// Default returns the configured default batch size.
func (p *BatchPolicy) Default() int {
	if p == nil {
		return 0
	}
	return p.defaultSize
}

// BatchDecision captures the outcome of resolving a batch size request.
type BatchDecision struct {
	Size      int
	Source    BatchSource
	Requested int
}

// Clamped reports whether the requested value exceeded the maximum.
func (d BatchDecision) Clamped() bool {
	return d.Source == BatchSourceClamped
}

// Resolve normalises the requested size. Zero means "use the default";
// negative values and values above the maximum are clamped.
func (p *BatchPolicy) Resolve(requested int) BatchDecision {
	decision := BatchDecision{Requested: requested}
	if p == nil {
		decision.Source = BatchSourceDefault
		return decision
	}

	switch {
	case requested == 0:
		decision.Size = p.defaultSize
		decision.Source = BatchSourceDefault
	case requested < 0:
		decision.Size = 1
		decision.Source = BatchSourceClamped
	case requested > p.maxSize:
		decision.Size = p.maxSize
		decision.Source = BatchSourceClamped
	default:
		decision.Size = requested
		decision.Source = BatchSourceExplicit
	}
	return decision
}
