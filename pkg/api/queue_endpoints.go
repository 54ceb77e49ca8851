package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"sync"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/krancour/dqueue/pkg/producer"
	"github.com/krancour/dqueue/pkg/queue"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

const defaultPeekCount = 10

// QueueEndpoints exposes named queues over HTTP. Each queue is fronted by a
// single Producer so that, within one server, a queue is closed at most once
// and nothing is accepted after it has been closed.
type QueueEndpoints struct {
	attacher          queue.Attacher
	itemsSchemaLoader gojsonschema.JSONLoader

	mu        sync.Mutex
	producers map[string]producer.Producer
}

// NewQueueEndpoints returns HTTP endpoints for the queues handed out by the
// provided Attacher.
func NewQueueEndpoints(attacher queue.Attacher) *QueueEndpoints {
	return &QueueEndpoints{
		attacher:          attacher,
		itemsSchemaLoader: gojsonschema.NewBytesLoader(itemsSchemaBytes),
		producers:         map[string]producer.Producer{},
	}
}

// Register implements Endpoints.
func (q *QueueEndpoints) Register(router *mux.Router) {
	router.HandleFunc(
		"/v1/queues/{name}",
		q.get,
	).Methods(http.MethodGet)
	router.HandleFunc(
		"/v1/queues/{name}/items",
		q.push,
	).Methods(http.MethodPost)
	router.HandleFunc(
		"/v1/queues/{name}/close",
		q.close,
	).Methods(http.MethodPost)
	router.HandleFunc(
		"/v1/queues/{name}",
		q.purge,
	).Methods(http.MethodDelete)
}

// QueueStatus is the representation of a queue returned by the API.
type QueueStatus struct {
	Name   string `json:"name"`
	Length int64  `json:"length"`
	Head   []int  `json:"head"`
}

func (q *QueueEndpoints) attach(
	w http.ResponseWriter,
	r *http.Request,
) (queue.Queue, bool) {
	name := mux.Vars(r)["name"]
	qu, err := q.attacher.Attach(name)
	if err != nil {
		glog.Error(errors.Wrapf(err, "error attaching to queue %q", name))
		writeError(w, http.StatusInternalServerError, "error attaching to queue")
		return nil, false
	}
	return qu, true
}

func (q *QueueEndpoints) getProducer(qu queue.Queue) producer.Producer {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.producers[qu.Name()]
	if !ok {
		p = producer.NewProducer(qu, nil)
		q.producers[qu.Name()] = p
	}
	return p
}

func (q *QueueEndpoints) get(w http.ResponseWriter, r *http.Request) {
	qu, ok := q.attach(w, r)
	if !ok {
		return
	}
	inspector, ok := qu.(queue.Inspector)
	if !ok {
		writeError(w, http.StatusNotImplemented, "queue cannot be inspected")
		return
	}
	count := int64(defaultPeekCount)
	if countStr := r.URL.Query().Get("head"); countStr != "" {
		var err error
		if count, err = strconv.ParseInt(countStr, 10, 64); err != nil ||
			count < 0 {
			writeError(w, http.StatusBadRequest, "head must be a whole number")
			return
		}
	}
	length, err := inspector.Len(r.Context())
	if err != nil {
		q.writeQueueError(w, err)
		return
	}
	head, err := inspector.Peek(r.Context(), count)
	if err != nil {
		q.writeQueueError(w, err)
		return
	}
	writeJSON(
		w,
		http.StatusOK,
		QueueStatus{
			Name:   qu.Name(),
			Length: length,
			Head:   head,
		},
	)
}

func (q *QueueEndpoints) push(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close() // nolint: errcheck

	bodyBytes, err := ioutil.ReadAll(r.Body)
	if err != nil {
		glog.Error(errors.Wrap(err, "error reading body of push request"))
		writeError(w, http.StatusBadRequest, "error reading request body")
		return
	}

	if validationResult, err := gojsonschema.Validate(
		q.itemsSchemaLoader,
		gojsonschema.NewBytesLoader(bodyBytes),
	); err != nil {
		glog.Error(errors.Wrap(err, "error validating request"))
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	} else if !validationResult.Valid() {
		writeError(
			w,
			http.StatusBadRequest,
			validationResult.Errors()[0].String(),
		)
		return
	}

	body := struct {
		Items []int `json:"items"`
	}{}
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		glog.Error(errors.Wrap(err, "error unmarshaling body of push request"))
		writeError(w, http.StatusBadRequest, "error unmarshaling request body")
		return
	}

	qu, ok := q.attach(w, r)
	if !ok {
		return
	}
	p := q.getProducer(qu)
	var pushed int
	for _, item := range body.Items {
		if err := p.Publish(r.Context(), item); err != nil {
			if err == producer.ErrClosed {
				writeError(w, http.StatusConflict, "queue has been closed")
				return
			}
			q.writeQueueError(w, err)
			return
		}
		pushed++
	}
	writeJSON(
		w,
		http.StatusCreated,
		struct {
			Pushed int `json:"pushed"`
		}{
			Pushed: pushed,
		},
	)
}

func (q *QueueEndpoints) close(w http.ResponseWriter, r *http.Request) {
	qu, ok := q.attach(w, r)
	if !ok {
		return
	}
	if err := q.getProducer(qu).Close(r.Context()); err != nil {
		q.writeQueueError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, responseEmptyJSON)
}

func (q *QueueEndpoints) purge(w http.ResponseWriter, r *http.Request) {
	qu, ok := q.attach(w, r)
	if !ok {
		return
	}
	inspector, ok := qu.(queue.Inspector)
	if !ok {
		writeError(w, http.StatusNotImplemented, "queue cannot be purged")
		return
	}
	if err := inspector.Purge(r.Context()); err != nil {
		q.writeQueueError(w, err)
		return
	}
	// A purged queue starts over and may be closed again
	q.mu.Lock()
	delete(q.producers, qu.Name())
	q.mu.Unlock()
	writeResponse(w, http.StatusOK, responseEmptyJSON)
}

func (q *QueueEndpoints) writeQueueError(w http.ResponseWriter, err error) {
	glog.Error(err)
	unavailable := &queue.ErrQueueUnavailable{}
	if errors.As(err, &unavailable) {
		writeError(w, http.StatusServiceUnavailable, "queue is unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}
