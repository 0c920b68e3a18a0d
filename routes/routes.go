package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mkrawczyk/volleypanel/handlers"
	"github.com/mkrawczyk/volleypanel/middleware"
)

// SetupRoutes wires the whole HTTP surface. Reads (state, standings, bracket,
// websocket feed) are public; every mutation goes through OperatorCredential
// so the PIN or session token reaches the mutation coordinator.
func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	playoffHandler *handlers.PlayoffHandler,
	sceneHandler *handlers.SceneHandler,
	sponsorHandler *handlers.SponsorHandler,
	websocketHandler *handlers.WebsocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.PinHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/ws/tournaments/{slug}", websocketHandler.Subscribe)

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.Create)

		r.Route("/{slug}", func(r chi.Router) {
			// Public read surface for overlays and spectators.
			r.Get("/state", tournamentHandler.GetState)
			r.Get("/standings", playoffHandler.Standings)
			r.Get("/bracket", playoffHandler.Bracket)

			r.Post("/auth", authHandler.IssueToken)

			// Operator surface; credential is validated inside the mutation.
			r.Group(func(r chi.Router) {
				r.Use(middleware.OperatorCredential)

				r.Post("/pin", authHandler.ChangePin)

				r.Post("/teams", teamHandler.Add)
				r.Patch("/teams/{teamId}", teamHandler.Update)
				r.Delete("/teams/{teamId}", teamHandler.Delete)

				r.Post("/matches", matchHandler.Create)
				r.Delete("/matches/{matchId}", matchHandler.Delete)
				r.Post("/matches/{matchId}/claim", matchHandler.Claim)
				r.Post("/matches/{matchId}/release", matchHandler.Release)
				r.Post("/matches/{matchId}/point", matchHandler.AddPoint)
				r.Post("/matches/{matchId}/reset-set", matchHandler.ResetSet)
				r.Post("/matches/{matchId}/live", matchHandler.MarkLive)
				r.Post("/matches/{matchId}/confirm", matchHandler.Confirm)
				r.Post("/matches/{matchId}/reopen", matchHandler.Reopen)
				r.Post("/matches/{matchId}/result", matchHandler.SetResult)

				r.Post("/playoffs/generate", playoffHandler.Generate)
				r.Post("/playoffs/reprogress", playoffHandler.Reprogress)

				r.Post("/scene", sceneHandler.SetScene)
				r.Post("/program", sceneHandler.SetProgramMatch)
				r.Post("/lock", sceneHandler.SetLocked)
				r.Post("/rotation", sceneHandler.SetRotation)
				r.Post("/queue", sceneHandler.QueueAdd)
				r.Post("/queue/{matchId}/promote", sceneHandler.QueuePromote)
				r.Delete("/queue/{matchId}", sceneHandler.QueueRemove)

				r.Post("/sponsors", sponsorHandler.Add)
				r.Patch("/sponsors/{sponsorId}", sponsorHandler.Update)
				r.Delete("/sponsors/{sponsorId}", sponsorHandler.Remove)
				r.Post("/sponsors/{sponsorId}/logo", sponsorHandler.UploadLogo)
			})
		})
	})
}
