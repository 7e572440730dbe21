// internal/httpserver/routes_daily.go
//
// Public, player-independent routes.
//   - GET /daily    → today's date key and puzzle number (never the answer)
//   - GET /counties → the county universe with neighbours, for the map
package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/countle/internal/daily"
)

type dailyRes struct {
	Date       string `json:"date"`
	GameNumber int    `json:"gameNumber"`
}

type countyRes struct {
	Name      string   `json:"name"`
	Province  string   `json:"province"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Neighbors []string `json:"neighbors"`
}

type countiesRes struct {
	Counties []countyRes `json:"counties"`
	// Names accepted by guesses, aliases included.
	Names []string `json:"names"`
}

func (s *Server) mountPublic(r chi.Router) {
	r.Get("/daily", s.handleDaily)
	r.Get("/counties", s.handleCounties)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	now := s.clock()
	writeJSON(w, http.StatusOK, dailyRes{
		Date:       daily.DateKey(now),
		GameNumber: s.daily.GameNumber(now),
	})
}

func (s *Server) handleCounties(w http.ResponseWriter, r *http.Request) {
	all := s.reg.All()
	out := countiesRes{Counties: make([]countyRes, 0, len(all)), Names: s.reg.Names()}
	for _, c := range all {
		out.Counties = append(out.Counties, countyRes{
			Name:      c.Name,
			Province:  c.Province,
			Lat:       c.Lat,
			Lng:       c.Lng,
			Neighbors: s.reg.Neighbors(c.Name),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
