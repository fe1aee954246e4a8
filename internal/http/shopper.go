package http

import (
	"net/http"

	"github.com/fjod/go_prasad/internal/session"
	"github.com/fjod/go_prasad/internal/shopper"
)

type Shoppers interface {
	For(sess session.Session) *shopper.Shopper
}

// currentShopper writes a 401 and returns nil when the request has no session.
func currentShopper(w http.ResponseWriter, r *http.Request, shoppers Shoppers) *shopper.Shopper {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return nil
	}
	return shoppers.For(sess)
}
