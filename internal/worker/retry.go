package worker

import "time"

// RetryPolicy shapes the backoff between failed refresh attempts.
// Zero fields are filled in by normalized before use.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 3
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.BackoffFactor < 1 {
		p.BackoffFactor = 2
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = time.Minute
	}
	return p
}

// NextDelay returns the wait after the given 1-based attempt. Delays
// grow geometrically from InitialDelay and never exceed MaxDelay.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	d := p.InitialDelay
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * p.BackoffFactor)
		if p.MaxDelay > 0 && d > p.MaxDelay {
			return p.MaxDelay
		}
	}
	return d
}
