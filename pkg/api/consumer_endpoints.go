package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/krancour/dqueue/pkg/consumer"
)

// ConsumerEndpoints reports on the consumers running in this process.
type ConsumerEndpoints struct {
	consumers []consumer.Consumer
}

// NewConsumerEndpoints returns HTTP endpoints that report on the provided
// consumers.
func NewConsumerEndpoints(consumers ...consumer.Consumer) *ConsumerEndpoints {
	return &ConsumerEndpoints{
		consumers: consumers,
	}
}

// ConsumerStatus is the representation of a consumer returned by the API.
type ConsumerStatus struct {
	ID       string         `json:"id"`
	Queue    string         `json:"queue"`
	State    consumer.State `json:"state"`
	Consumed uint64         `json:"consumed"`
}

// Register implements Endpoints.
func (c *ConsumerEndpoints) Register(router *mux.Router) {
	router.HandleFunc("/v1/consumers", c.list).Methods(http.MethodGet)
}

func (c *ConsumerEndpoints) list(w http.ResponseWriter, _ *http.Request) {
	statuses := make([]ConsumerStatus, len(c.consumers))
	for i, cons := range c.consumers {
		statuses[i] = ConsumerStatus{
			ID:       cons.ID(),
			Queue:    cons.QueueName(),
			State:    cons.State(),
			Consumed: cons.Consumed(),
		}
	}
	writeJSON(w, http.StatusOK, statuses)
}
