package consumer

import (
	"context"
	"io"
	"os"
	"time"
)

// HandlerFn is the signature for functions that consumers call to handle a
// real (non-sentinel) item.
type HandlerFn func(ctx context.Context, item int) error

// Options represents configuration options for a Consumer.
type Options struct {
	// ProcessingDelay specifies the pause between handling one item and popping
	// the next. Pacing is implemented with a rate limiter, so time spent in the
	// handler counts toward the delay and the pause is abandoned as soon as the
	// consumer's context is canceled.
	// Min: 0
	// Max: 1 hour
	// Default: 5 seconds
	ProcessingDelay *time.Duration

	// RepushMaxAttempts specifies the maximum number of attempts that will be
	// made to re-push the sentinel before the consumer gives up and fails.
	// Min: 1
	// Max: 10
	// Default: 3
	RepushMaxAttempts *uint8
	// RepushMaxBackoff specifies the maximum delay between attempts to re-push
	// the sentinel.
	// Min: 1 second
	// Max: 1 minute
	// Default: 10 seconds
	RepushMaxBackoff *time.Duration

	// Output is where "Consumed: <item>" and "Consumer Finished!" lines are
	// written.
	// Default: os.Stdout
	Output io.Writer

	// Handler, if specified, is invoked for every real item after it has been
	// written to Output. Handler errors are logged and are not fatal.
	Handler HandlerFn

	// Observer, if specified, is told about the consumer's progress.
	Observer Observer
}

func (o *Options) applyDefaults() {
	var minProcessingDelay time.Duration
	maxProcessingDelay := time.Hour
	defaultProcessingDelay := 5 * time.Second
	if o.ProcessingDelay == nil {
		o.ProcessingDelay = &defaultProcessingDelay
	} else if *o.ProcessingDelay < minProcessingDelay {
		o.ProcessingDelay = &minProcessingDelay
	} else if *o.ProcessingDelay > maxProcessingDelay {
		o.ProcessingDelay = &maxProcessingDelay
	}

	var minRepushMaxAttempts uint8 = 1
	var maxRepushMaxAttempts uint8 = 10
	var defaultRepushMaxAttempts uint8 = 3
	if o.RepushMaxAttempts == nil {
		o.RepushMaxAttempts = &defaultRepushMaxAttempts
	} else if *o.RepushMaxAttempts < minRepushMaxAttempts {
		o.RepushMaxAttempts = &minRepushMaxAttempts
	} else if *o.RepushMaxAttempts > maxRepushMaxAttempts {
		o.RepushMaxAttempts = &maxRepushMaxAttempts
	}

	minRepushMaxBackoff := time.Second
	maxRepushMaxBackoff := time.Minute
	defaultRepushMaxBackoff := 10 * time.Second
	if o.RepushMaxBackoff == nil {
		o.RepushMaxBackoff = &defaultRepushMaxBackoff
	} else if *o.RepushMaxBackoff < minRepushMaxBackoff {
		o.RepushMaxBackoff = &minRepushMaxBackoff
	} else if *o.RepushMaxBackoff > maxRepushMaxBackoff {
		o.RepushMaxBackoff = &maxRepushMaxBackoff
	}

	if o.Output == nil {
		o.Output = os.Stdout
	}

	if o.Observer == nil {
		o.Observer = Observers{}
	}
}
