package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"scribble/domain"
	"scribble/errs"
)

func (s *Server) registerFeedRoutes(r *mux.Router) {
	// The global feed, paginated and served from the page cache.
	r.HandleFunc("/", s.handleIndex).Methods("GET")

	// All posts of one group.
	r.HandleFunc("/group/{slug}/", s.handleGroupFeed).Methods("GET")

	// All posts of one author, plus whether the requester follows them.
	r.HandleFunc("/profile/{username}/", s.handleProfile).Methods("GET")

	// The personalized feed of followed authors.
	r.HandleFunc("/follow/", s.requireAuth(s.handleFollowingFeed)).Methods("GET")
}

// IndexPage is the response of the global feed.
type IndexPage struct {
	Page *domain.PostPage `json:"page"`
}

// GroupPage is the response of a group feed.
type GroupPage struct {
	Group *domain.Group    `json:"group"`
	Page  *domain.PostPage `json:"page"`
}

// ProfilePage is the response of an author's profile feed. Following reports
// whether the requesting user follows this author; it is always false for
// anonymous requesters.
type ProfilePage struct {
	Author    *domain.User     `json:"author"`
	Page      *domain.PostPage `json:"page"`
	Following bool             `json:"following"`
}

// FollowIndexPage is the response of the personalized following feed.
type FollowIndexPage struct {
	Page *domain.PostPage `json:"page"`
}

// handleIndex handles the route "GET /".
// The rendered page is cached for a short TTL, keyed by page number. Within
// that window every requester gets the identical bytes, no matter how many
// posts arrive meanwhile; freshness is bounded only by the TTL.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	ctx := r.Context()

	if body, ok := s.cache.Get(ctx, page); ok {
		w.Write(body)
		return
	}

	feed, err := s.ps.GlobalFeed(page)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	body, err := json.Marshal(&IndexPage{Page: feed})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.cache.Set(ctx, page, body)
	w.Write(body)
}

// handleGroupFeed handles the route "GET /group/{slug}/".
// It returns the group and the requested page of its posts, 404 if the slug
// is unknown.
func (s *Server) handleGroupFeed(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	group, feed, err := s.ps.GroupFeed(slug, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &GroupPage{Group: group, Page: feed})
}

// handleProfile handles the route "GET /profile/{username}/".
// It returns the author, the requested page of their posts, and whether the
// requesting user currently follows them.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, feed, err := s.ps.ProfileFeed(username, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	following := false
	if user := s.getUserFromContext(r.Context()); user != nil && user.ID != author.ID {
		following, err = s.fs.IsFollowing(user.ID, author.ID)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	writeJSON(w, r, &ProfilePage{Author: author, Page: feed, Following: following})
}

// handleFollowingFeed handles the route "GET /follow/".
// It returns the requested page of posts written by authors the requesting
// user follows. Following no one yields an empty page, not an error.
func (s *Server) handleFollowingFeed(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	feed, err := s.ps.FollowingFeed(user.ID, pageParam(r))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &FollowIndexPage{Page: feed})
}
