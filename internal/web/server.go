package web

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/memodeck/internal/review"
	"github.com/conorfennell/memodeck/internal/sync"
)

// Server holds the dependencies for the HTTP API.
type Server struct {
	service   *review.Service
	syncer    *sync.Syncer
	validate  *validator.Validate
	jwtSecret []byte
	router    *http.ServeMux
}

// NewServer creates and configures a new server.
func NewServer(service *review.Service, syncer *sync.Syncer, jwtSecret []byte) *Server {
	s := &Server{
		service:   service,
		syncer:    syncer,
		validate:  validator.New(),
		jwtSecret: jwtSecret,
		router:    http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface. Every route sits
// behind bearer authentication.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.authenticate(s.router).ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("POST /api/reviews", s.handleSubmitReview)

	s.router.HandleFunc("GET /api/decks", s.handleListDecks)
	s.router.HandleFunc("POST /api/decks", s.handleCreateDeck)
	s.router.HandleFunc("GET /api/decks/{slug}", s.handleGetDeck)
	s.router.HandleFunc("GET /api/decks/{slug}/review", s.handleGetReviewCards)

	s.router.HandleFunc("PATCH /api/cards/{id}", s.handleEditCard)
	s.router.HandleFunc("GET /api/cards/{id}/logs", s.handleCardLogs)

	s.router.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.router.HandleFunc("PUT /api/settings", s.handlePutSettings)

	s.router.HandleFunc("POST /api/sync", s.handlePostSync)
}
