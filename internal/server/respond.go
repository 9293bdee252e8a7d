package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/samber/lo"
)

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// Все ошибки API имеют вид {"error": "..."}
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// methods раздает запрос по методу.
// На остальные методы отвечает 405 с заголовком Allow.
func methods(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	allowed := lo.Keys(handlers)
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r)
	}
}
