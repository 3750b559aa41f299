package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"scribble/domain"
	"scribble/errs"
)

func (s *Server) registerCommentRoutes(r *mux.Router) {
	r.HandleFunc("/posts/{id:[0-9]+}/comment/", s.requireAuth(s.handleAddComment)).Methods("POST")
}

// commentInput is the write payload for adding a comment.
type commentInput struct {
	Text string `json:"text"`
}

// handleAddComment handles the route "POST /posts/{id}/comment/".
// It appends a comment to the post and redirects back to the detail view.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	var input commentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid comment payload."))
		return
	}

	user := s.getUserFromContext(r.Context())
	comment := domain.Comment{
		PostID: id,
		UserID: user.ID,
		Text:   input.Text,
	}
	if err := s.cs.Create(&comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", id), http.StatusFound)
}
