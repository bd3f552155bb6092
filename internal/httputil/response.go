package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform JSON response shape. Success responses carry data;
// error responses carry a user-safe error string. Internal details never
// appear here outside debug mode.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// RespondJSON writes a success envelope with the given status code.
// The payload is marshaled first so an encoding failure cannot produce a
// partial response after headers are sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, Envelope{Success: true, Data: data})
}

// RespondMessage writes a success envelope with an additional human-readable
// message alongside the data.
func RespondMessage(w http.ResponseWriter, status int, data interface{}, message string) {
	write(w, status, Envelope{Success: true, Data: data, Message: message})
}

// RespondError writes a failure envelope.
func RespondError(w http.ResponseWriter, status int, errMsg string) {
	write(w, status, Envelope{Success: false, Error: errMsg})
}

func write(w http.ResponseWriter, status int, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
