package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"scribble/cache"
	"scribble/crud"
	"scribble/domain"
	"scribble/errs"
)

// Server provides the http functionality of this app, namely routing, request
// handling, and middleware. It performs authentication and authorization
// before handing things over to one of the crud services.
type Server struct {
	router *mux.Router
	logger *zap.Logger
	us     domain.UserService
	gs     domain.GroupService
	ps     domain.PostService
	cs     domain.CommentService
	fs     domain.FollowService
	is     domain.ImageService
	cache  *cache.PageCache
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(isProd bool, csrfKey string, logger *zap.Logger, services *crud.Services, pageCache *cache.PageCache) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: logger,
		us:     services.User,
		gs:     services.Group,
		ps:     services.Post,
		cs:     services.Comment,
		fs:     services.Follow,
		is:     services.Image,
		cache:  pageCache,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the crud system.
	s.registerFeedRoutes(s.router)
	s.registerPostRoutes(s.router)
	s.registerCommentRoutes(s.router)
	s.registerFollowRoutes(s.router)

	// Serve uploaded media files.
	s.router.PathPrefix("/media/").Handler(
		http.StripPrefix("/media/", http.FileServer(http.Dir(domain.ImagesBaseDir))))

	// Unknown paths get a json 404 instead of the default plaintext one.
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errs.ReturnError(w, r, errs.Errorf(errs.ENOTFOUND, "The requested page does not exist."))
	})

	// Set up middleware that needs to run on every request. A new CSRF token
	// is issued on safe requests; unsafe requests without one are rejected.
	csrfMw := csrf.Protect([]byte(csrfKey), csrf.Secure(isProd), csrf.Path("/"))
	s.router.Use(csrfMw, setContentTypeJSON, s.logRequest, s.authUser)
	return s
}

// ServeHTTP makes the Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	addr := ":" + strconv.Itoa(port)
	s.logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, s.router); err != nil {
		s.logger.Fatal("server stopped", zap.Error(err))
	}
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The logRequest middleware logs method, path, status and duration of
// every request.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// statusWriter remembers the status code written to it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// pageParam parses the 1-based "page" query parameter. Anything missing or
// unparseable counts as page 1; range clamping happens in the feed composer.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// writeJSON encodes v into the response. Encoding failures at this point can
// only be logged, the status line is already out.
func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.LogError(r, err)
	}
}
