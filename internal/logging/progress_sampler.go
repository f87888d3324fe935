package logging

// ProgressSampler suppresses repetitive progress output while a count grows,
// emitting once each time the count enters a new bucket.
type ProgressSampler struct {
	bucketSize int
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits every bucketSize items
// (default 100).
func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 100
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether progress at count should be emitted. The first
// call always emits.
func (s *ProgressSampler) ShouldLog(count int) bool {
	if s == nil {
		return true
	}
	if count < 0 {
		count = 0
	}
	bucket := count / s.bucketSize
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

// Reset clears the sampler state (e.g. when a new walk starts).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
