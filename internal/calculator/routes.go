package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator session endpoints onto the given
// router under the /calculator prefix.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/calculator/sessions", func(r chi.Router) {
		r.Post("/", a.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", a.GetSession)
			r.Delete("/", a.DeleteSession)
			r.Post("/keys", a.PressKey)
		})
	})
}
