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

func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/create/", s.requireAuth(s.handleCreatePostForm)).Methods("GET")
	r.HandleFunc("/create/", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/", s.handlePostDetail).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}/edit/", s.requireAuth(s.handleEditPostForm)).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}/edit/", s.requireAuth(s.handleEditPost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/delete/", s.requireAuth(s.handleDeletePost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}/image/", s.requireAuth(s.handleUploadPostImage)).Methods("POST")
}

// PostDetailPage is the response of the post detail route: the post plus its
// comments in arrival order, oldest first.
type PostDetailPage struct {
	Post     *domain.Post     `json:"post"`
	Comments []domain.Comment `json:"comments"`
}

// PostFormPage is the response of the create/edit form routes. It carries the
// available groups for the group selector, and the post being edited if any.
type PostFormPage struct {
	Post   *domain.Post   `json:"post,omitempty"`
	Groups []domain.Group `json:"groups"`
}

// postInput is the write payload for creating and editing posts.
type postInput struct {
	Text    string `json:"text"`
	GroupID *int   `json:"group_id"`
}

// handlePostDetail handles the route "GET /posts/{id}/".
func (s *Server) handlePostDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comments, err := s.cs.ByPostID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &PostDetailPage{Post: post, Comments: comments})
}

// handleCreatePostForm handles the route "GET /create/".
// It returns the data the create form needs, namely the selectable groups.
func (s *Server) handleCreatePostForm(w http.ResponseWriter, r *http.Request) {
	groups, err := s.gs.All()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &PostFormPage{Groups: groups})
}

// handleCreatePost handles the route "POST /create/".
// On success it redirects to the author's profile.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var input postInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post payload."))
		return
	}
	user := s.getUserFromContext(r.Context())
	post := domain.Post{
		UserID:  user.ID,
		Text:    input.Text,
		GroupID: input.GroupID,
	}
	if err := s.ps.Create(&post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/profile/%s/", user.Username), http.StatusFound)
}

// handleEditPostForm handles the route "GET /posts/{id}/edit/".
// Only the author gets the form; everyone else is sent back to the detail view.
func (s *Server) handleEditPostForm(w http.ResponseWriter, r *http.Request) {
	post, ok := s.authoredPost(w, r)
	if !ok {
		return
	}
	groups, err := s.gs.All()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &PostFormPage{Post: post, Groups: groups})
}

// handleEditPost handles the route "POST /posts/{id}/edit/".
// Only the author may edit; non-authors are redirected to the detail view and
// the post stays unchanged. On success it redirects to the detail view.
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.authoredPost(w, r)
	if !ok {
		return
	}
	var input postInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid post payload."))
		return
	}
	post.Text = input.Text
	post.GroupID = input.GroupID
	if err := s.ps.Update(post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
}

// handleDeletePost handles the route "POST /posts/{id}/delete/".
// Only the author may delete. The post's stored images go with it.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.authoredPost(w, r)
	if !ok {
		return
	}
	if err := s.ps.Delete(post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.is.DeleteAll(domain.OwnerTypePost, post.ID); err != nil {
		errs.LogError(r, err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleUploadPostImage handles the route "POST /posts/{id}/image/".
// It stores the uploaded file and attaches it to the post.
func (s *Server) handleUploadPostImage(w http.ResponseWriter, r *http.Request) {
	post, ok := s.authoredPost(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "%s", errs.ErrorMessage(err)))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "An image file is required."))
		return
	}
	defer file.Close()

	img := &domain.Image{
		OwnerType: domain.OwnerTypePost,
		OwnerID:   post.ID,
		File:      file,
		Filename:  header.Filename,
	}
	if err := s.is.Create(img); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	post.Image = img.URL
	if err := s.ps.Update(post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, r, post)
}

// authoredPost loads the post addressed by the route and enforces that the
// requesting user wrote it. Non-authors are redirected to the detail view,
// matching the form flow, rather than shown an error page. The bool result
// reports whether the caller should continue.
func (s *Server) authoredPost(w http.ResponseWriter, r *http.Request) (*domain.Post, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return nil, false
	}
	post, err := s.ps.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return nil, false
	}
	user := s.getUserFromContext(r.Context())
	if post.UserID != user.ID {
		http.Redirect(w, r, fmt.Sprintf("/posts/%d/", post.ID), http.StatusFound)
		return nil, false
	}
	return post, true
}
