package consumer

// Observer is an interface for components that want to be told about
// noteworthy moments in the lives of consumers. Implementations must be safe
// for concurrent use and must not block for long; they are invoked inline by
// the consumer loop.
type Observer interface {
	ConsumerStarted(consumerID, queueName string)
	ItemConsumed(consumerID, queueName string, item int)
	StateChanged(consumerID, queueName string, state State)
	// ConsumerStopped is invoked exactly once per run. err is nil if and only
	// if the consumer stopped because it observed the sentinel.
	ConsumerStopped(consumerID, queueName string, err error)
}

// Observers fans out to any number of Observers.
type Observers []Observer

func (o Observers) ConsumerStarted(consumerID, queueName string) {
	for _, observer := range o {
		observer.ConsumerStarted(consumerID, queueName)
	}
}

func (o Observers) ItemConsumed(consumerID, queueName string, item int) {
	for _, observer := range o {
		observer.ItemConsumed(consumerID, queueName, item)
	}
}

func (o Observers) StateChanged(consumerID, queueName string, state State) {
	for _, observer := range o {
		observer.StateChanged(consumerID, queueName, state)
	}
}

func (o Observers) ConsumerStopped(consumerID, queueName string, err error) {
	for _, observer := range o {
		observer.ConsumerStopped(consumerID, queueName, err)
	}
}
