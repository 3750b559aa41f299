package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"scribble/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/profile/{username}/follow/", s.requireAuth(s.handleFollow)).Methods("GET")
	r.HandleFunc("/profile/{username}/unfollow/", s.requireAuth(s.handleUnfollow)).Methods("GET")
}

// handleFollow handles the route "GET /profile/{username}/follow/".
// It creates the follow edge and redirects back to the profile. Following
// someone already followed changes nothing; trying to follow yourself is
// quietly skipped here on top of the service-level guard.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if user.ID != author.ID {
		if err := s.fs.Follow(user.ID, author.ID); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", username), http.StatusFound)
}

// handleUnfollow handles the route "GET /profile/{username}/unfollow/".
// It deletes the follow edge if present and redirects back to the profile.
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := s.us.ByUsername(username)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := s.getUserFromContext(r.Context())
	if err := s.fs.Unfollow(user.ID, author.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", username), http.StatusFound)
}
