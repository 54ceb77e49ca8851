package api

import (
	"encoding/json"
	"net/http"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

var responseEmptyJSON = []byte("{}")

func writeResponse(
	w http.ResponseWriter,
	statusCode int,
	responseBody []byte,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(responseBody); err != nil {
		glog.Error(
			errors.Wrap(err, "api server error: error writing response"),
		)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, obj interface{}) {
	responseBytes, err := json.Marshal(obj)
	if err != nil {
		glog.Error(errors.Wrap(err, "error marshaling response"))
		writeResponse(w, http.StatusInternalServerError, responseEmptyJSON)
		return
	}
	writeResponse(w, statusCode, responseBytes)
}

func writeError(w http.ResponseWriter, statusCode int, reason string) {
	writeJSON(
		w,
		statusCode,
		struct {
			Reason string `json:"reason"`
		}{
			Reason: reason,
		},
	)
}
