package response

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// JSON writes data as a JSON response. The body is encoded before the
// header is written; an unencodable value produces a 500.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response"}}` + "\n"))
		return
	}
	body = append(body, '\n')

	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
