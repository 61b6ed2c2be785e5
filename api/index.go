package handler

import (
	"net/http"

	"ledger-backend/bootstrap"
)

// Handler is the Vercel serverless entry point. All requests are rewritten here.
func Handler(w http.ResponseWriter, r *http.Request) {
	h, err := bootstrap.Handler()
	if err != nil {
		http.Error(w, `{"status":"error","error":{"message":"service unavailable","statusCode":503}}`, http.StatusServiceUnavailable)
		return
	}
	r.RequestURI = r.URL.String()
	h.ServeHTTP(w, r)
}
