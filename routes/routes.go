package routes

import (
	"github.com/Dosada05/debate-system/handlers"
	"github.com/Dosada05/debate-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

// SetupRoutes собирает маршрутизатор приложения. Чтение (турниры, сетка,
// результаты, таблица) открыто; любые изменения требуют Bearer-токена, а
// жеребьёвка и результаты дополнительно проверяются ролями в хендлерах.
func SetupRoutes(
	jwtSecret []byte,
	tournamentHandler *handlers.TournamentHandler,
	structureHandler *handlers.StructureHandler,
	drawHandler *handlers.DrawHandler,
	scoringHandler *handlers.ScoringHandler,
	teamHandler *handlers.TeamHandler,
	motionHandler *handlers.MotionHandler,
	locationHandler *handlers.LocationHandler,
	roleHandler *handlers.RoleHandler,
	wsHandler *handlers.WebSocketHandler,
) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)

	router.Get("/ws/tournaments/{tournamentID}", wsHandler.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра
		r.Get("/", tournamentHandler.ListTournaments)
		r.Get("/{tournamentID}", tournamentHandler.GetTournament)
		r.Get("/{tournamentID}/phases", structureHandler.ListPhases)
		r.Get("/{tournamentID}/teams", teamHandler.ListTeams)
		r.Get("/{tournamentID}/locations", locationHandler.ListLocations)
		r.Get("/{tournamentID}/affiliations", roleHandler.ListAffiliations)

		// Защищённые маршруты
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", tournamentHandler.CreateTournament)
			r.Put("/{tournamentID}", tournamentHandler.UpdateTournament)
			r.Post("/{tournamentID}/crest", tournamentHandler.UploadCrest)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteTournament)

			r.Post("/{tournamentID}/phases", structureHandler.CreatePhase)
			r.Post("/{tournamentID}/teams", teamHandler.CreateTeam)
			r.Post("/{tournamentID}/locations", locationHandler.CreateLocation)
			r.Post("/{tournamentID}/affiliations", roleHandler.CreateAffiliation)

			r.Route("/{tournamentID}/users/{userID}/roles", func(r chi.Router) {
				r.Post("/", roleHandler.GrantRoles)
				r.Get("/", roleHandler.GetRoles)
				r.Put("/", roleHandler.UpdateRoles)
				r.Delete("/", roleHandler.RevokeRoles)
			})
		})
	})

	router.Route("/phases", func(r chi.Router) {
		r.Get("/{phaseID}", structureHandler.GetPhase)
		r.Get("/{phaseID}/rounds", structureHandler.ListRounds)
		r.Get("/{phaseID}/standings", scoringHandler.GetStandings)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/{phaseID}/rounds", structureHandler.CreateRound)
			r.Patch("/{phaseID}/status", structureHandler.TransitionPhaseStatus)
			r.Post("/{phaseID}/reopen", structureHandler.ReopenPhase)
			r.Delete("/{phaseID}", structureHandler.DeletePhase)
		})
	})

	router.Route("/rounds", func(r chi.Router) {
		r.Get("/{roundID}", structureHandler.GetRound)
		r.Get("/{roundID}/debates", drawHandler.ListDebates)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/{roundID}/draw", drawHandler.GenerateDraw)
			r.Patch("/{roundID}/status", structureHandler.TransitionRoundStatus)
			r.Post("/{roundID}/reopen", structureHandler.ReopenRound)
			r.Delete("/{roundID}", structureHandler.DeleteRound)
		})
	})

	router.Route("/debates", func(r chi.Router) {
		r.Get("/{debateID}", drawHandler.GetDebate)
		r.Get("/{debateID}/results", scoringHandler.ListDebateResults)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Patch("/{debateID}/team", drawHandler.ReassignTeam)
			r.Patch("/{debateID}/judge", drawHandler.ReassignJudge)
			r.Patch("/{debateID}/room", drawHandler.ReassignRoom)
			r.Patch("/{debateID}/marshal", drawHandler.SetMarshal)
			r.Patch("/{debateID}/proposition", drawHandler.SetPropositionSide)

			r.Post("/{debateID}/results", scoringHandler.RecordResult)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetTeam)
		r.Get("/{teamID}/attendees", teamHandler.ListAttendees)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Put("/{teamID}", teamHandler.UpdateTeam)
			r.Post("/{teamID}/crest", teamHandler.UploadCrest)
			r.Delete("/{teamID}", teamHandler.DeleteTeam)
		})
	})

	router.Route("/attendees", func(r chi.Router) {
		r.Get("/{attendeeID}", teamHandler.GetAttendee)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", teamHandler.CreateAttendee)
			r.Put("/{attendeeID}", teamHandler.UpdateAttendee)
			r.Delete("/{attendeeID}", teamHandler.DeleteAttendee)
		})
	})

	router.Route("/motions", func(r chi.Router) {
		r.Get("/", motionHandler.ListMotions)
		r.Get("/{motionID}", motionHandler.GetMotion)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", motionHandler.CreateMotion)
			r.Put("/{motionID}", motionHandler.UpdateMotion)
			r.Delete("/{motionID}", motionHandler.DeleteMotion)
		})
	})

	router.Route("/locations", func(r chi.Router) {
		r.Get("/{locationID}", locationHandler.GetLocation)
		r.Get("/{locationID}/rooms", locationHandler.ListRooms)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/{locationID}/rooms", locationHandler.CreateRoom)
			r.Delete("/{locationID}", locationHandler.DeleteLocation)
		})
	})

	router.Route("/rooms", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Delete("/{roomID}", locationHandler.DeleteRoom)
		})
	})

	router.Route("/affiliations", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Delete("/{affiliationID}", roleHandler.DeleteAffiliation)
		})
	})

	return router
}
