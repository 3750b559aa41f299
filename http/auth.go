package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"scribble/auth"
	"scribble/domain"
	"scribble/errs"
)

// LoginRoute is where anonymous requests to authenticated-only pages
// get redirected.
const LoginRoute = "/auth/login/"

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/auth/signup/", s.handleSignup).Methods("POST")
	r.HandleFunc("/auth/login/", s.handleLoginPage).Methods("GET")
	r.HandleFunc("/auth/login/", s.handleLogin).Methods("POST")
	r.HandleFunc("/auth/logout/", s.requireAuth(s.handleLogout)).Methods("POST")
}

// messageResponse is the body of auth endpoints that have nothing better to say.
type messageResponse struct {
	Message string `json:"message"`
}

// handleSignup handles the route "POST /auth/signup/".
// It creates a new user and signs them in right away.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid signup payload."))
		return
	}
	if err := s.us.Create(&user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.signIn(w, &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, r, &messageResponse{Message: "successfully registered"})
}

// handleLoginPage handles the route "GET /auth/login/". It exists as the
// landing spot for the requireAuth redirect.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, &messageResponse{Message: "please log in"})
}

// handleLogin handles the route "POST /auth/login/".
// It authenticates the submitted credentials and sets the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.User
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid login payload."))
		return
	}
	user, err := s.us.Authenticate(creds.Username, creds.Password)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.signIn(w, user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &messageResponse{Message: "successfully logged in"})
}

// handleLogout handles the route "POST /auth/logout/".
// It expires the session cookie and rotates the user's remember token, so
// that any other copy of the old cookie is dead too.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie := http.Cookie{
		Name:     "remember_token",
		Value:    "",
		Expires:  time.Now(),
		HttpOnly: true,
	}
	http.SetCookie(w, &cookie)

	user := s.getUserFromContext(r.Context())
	token, err := auth.MakeRememberToken()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user.Remember = token
	if err := s.us.Update(user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &messageResponse{Message: "successfully logged out"})
}

// signIn is used to sign the given user in via cookies.
func (s *Server) signIn(w http.ResponseWriter, user *domain.User) error {
	if user.Remember == "" {
		token, err := auth.MakeRememberToken()
		if err != nil {
			return err
		}
		user.Remember = token
		if err := s.us.Update(user); err != nil {
			return err
		}
	}
	cookie := http.Cookie{
		Name:     "remember_token",
		Value:    user.Remember,
		Path:     "/",
		HttpOnly: true,
	}
	http.SetCookie(w, &cookie)
	return nil
}

// The authUser middleware resolves the session cookie to a user and puts it
// into the request context. Requests without a valid cookie stay anonymous.
func (s *Server) authUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("remember_token")
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByRemember(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(auth.SetUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth guards authenticated-only routes. Anonymous requests are
// redirected to the login page, never answered with an error page.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.getUserFromContext(r.Context())
		if user == nil {
			http.Redirect(w, r, LoginRoute, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) getUserFromContext(ctx context.Context) *domain.User {
	return auth.GetUser(ctx)
}
