package api

import (
	"net/http"

	"github.com/spigell/hackmate/internal/engine"
	"github.com/spigell/hackmate/internal/matching"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, jsonResponse{"status": "ok"})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var q matching.Query
	if err := readJSON(w, r, &q); err != nil {
		s.badRequest(w, r, err)
		return
	}

	results, err := s.engine.Search(r.Context(), q)
	if err != nil {
		s.mapError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, jsonResponse{"results": results})
}

func (s *Server) autoMatch(w http.ResponseWriter, r *http.Request) {
	var req engine.AutoMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	resp, err := s.engine.AutoMatch(r.Context(), req)
	if err != nil {
		s.mapError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, resp)
}

func (s *Server) recommendClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := s.engine.Recommend(r.Context())
	if err != nil {
		s.mapError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, jsonResponse{"clusters": clusters})
}

func (s *Server) assignRoles(w http.ResponseWriter, r *http.Request) {
	var req engine.RolesRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	assignments, err := s.engine.AssignRoles(r.Context(), req)
	if err != nil {
		s.mapError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, jsonResponse{"roles": assignments})
}
