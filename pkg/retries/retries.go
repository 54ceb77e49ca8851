package retries

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// ManageRetries calls fn until it reports that no retry is warranted or until
// maxAttempts have been made, sleeping a jittered, exponentially increasing
// interval (capped at maxBackoff) between attempts. The error from the final
// attempt is returned, wrapped with a description of the process.
func ManageRetries(
	ctx context.Context,
	process string,
	maxAttempts uint8,
	maxBackoff time.Duration,
	fn func() (bool, error),
) error {
	var failedAttempts uint8
	for {
		retry, err := fn()
		if !retry {
			return err
		}
		failedAttempts++
		if failedAttempts >= maxAttempts {
			return errors.Wrapf(
				err,
				"failed %d attempt(s) to %s",
				failedAttempts,
				process,
			)
		}
		delay := jitteredExpBackoff(failedAttempts, maxBackoff)
		glog.Warningf(
			"failed %d attempt(s) to %s; will retry in %s: %s",
			failedAttempts,
			process,
			delay,
			err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.Wrapf(
				ctx.Err(),
				"gave up after %d attempt(s) to %s",
				failedAttempts,
				process,
			)
		}
	}
}

func jitteredExpBackoff(
	failureCount uint8,
	maxDelay time.Duration,
) time.Duration {
	base := math.Pow(2, float64(failureCount))
	capped := math.Min(base, maxDelay.Seconds())
	jittered := (1 + seededRand.Float64()) * (capped / 2)
	scaled := jittered * float64(time.Second)
	return time.Duration(scaled)
}
