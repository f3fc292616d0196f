// Package pace provides the duration samplers that give the run its
// human-looking timing. Components take a Sampler instead of calling rand
// inline so tests can substitute fixed values.
package pace

import (
	"math/rand/v2"
	"time"
)

// Sampler produces one delay per call.
type Sampler func() time.Duration

// Uniform returns a Sampler drawing uniformly from [min, max].
func Uniform(min, max time.Duration) Sampler {
	if max < min {
		min, max = max, min
	}

	spread := max - min

	return func() time.Duration {
		if spread == 0 {
			return min
		}

		return min + rand.N(spread)
	}
}

// Fixed returns a Sampler that always yields d.
func Fixed(d time.Duration) Sampler {
	return func() time.Duration { return d }
}
