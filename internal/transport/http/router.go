package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"peco-service/internal/app"
	"peco-service/internal/domain"
	"peco-service/internal/metrics"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth       *app.AuthService
	Quizzes    *app.QuizService
	Lessons    *app.LessonService
	Challenges *app.ChallengeService
	Flashcards *app.FlashcardService
	Dashboard  *app.DashboardService
}

// Options configure the router.
type Options struct {
	CORSOrigins []string
	Metrics     *metrics.Metrics
	Log         logrus.FieldLogger
}

type handler struct {
	svc Services
	log logrus.FieldLogger
}

// NewRouter mounts the REST API, the quiz websocket and the operational endpoints.
func NewRouter(svc Services, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &handler{svc: svc, log: log}
	ws := NewWSHandler(svc.Quizzes, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(instrument(opts.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Post("/api/auth/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(authenticate(svc.Auth, log))

		r.Get("/ws/quiz", ws.ServeWS)

		r.Route("/api", func(r chi.Router) {
			r.Post("/auth/logout", h.logout)
			r.Get("/auth/me", h.me)

			r.Get("/quizzes", h.listQuizzes)
			r.Post("/quizzes/{quizID}/sessions", h.startSession)

			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Get("/", h.sessionState)
				r.Delete("/", h.disposeSession)
				r.Post("/answer", h.answer)
				r.Post("/next", h.next)
				r.Post("/previous", h.previous)
				r.Post("/skip", h.skip)
				r.Post("/submit", h.submit)
				r.Post("/restart", h.restart)
				r.Get("/hint", h.hint)
				r.Get("/result", h.result)
				r.Get("/review", h.review)
			})

			r.Route("/flashcards", func(r chi.Router) {
				r.Get("/", h.listFlashcards)
				r.Get("/studied", h.studiedFlashcards)
				r.Delete("/studied", h.resetStudied)
				r.Post("/{cardID}/studied", h.markStudied)
				r.Post("/{cardID}/rating", h.rateFlashcard)
			})

			r.Route("/challenges", func(r chi.Router) {
				r.Get("/", h.listChallenges)
				r.Route("/{challengeID}", func(r chi.Router) {
					r.Get("/", h.getChallenge)
					r.Post("/start", h.startChallenge)
					r.Post("/steps/{step}", h.completeStep)
					r.Post("/photos", h.addPhoto)
					r.Delete("/photos/{photoID}", h.removePhoto)
					r.Put("/reflection", h.setReflection)
					r.Post("/submit", h.submitChallenge)
				})
			})

			r.Get("/dashboard", h.dashboard)
			r.Get("/leaderboard", h.leaderboard)

			r.Route("/admin/lessons", func(r chi.Router) {
				r.Use(requireRole(domain.RoleAdmin, log))
				r.Get("/", h.listLessons)
				r.Post("/", h.createLesson)
				r.Post("/bulk", h.bulkLessons)
				r.Get("/stats", h.lessonStats)
				r.Get("/{lessonID}", h.getLesson)
				r.Put("/{lessonID}", h.updateLesson)
				r.Delete("/{lessonID}", h.deleteLesson)
			})
		})
	})
	return r
}

// user returns the caller's identity. Routes behind authenticate always have one.
func user(r *http.Request) domain.User {
	rec, _ := principal(r.Context())
	return rec.User
}
