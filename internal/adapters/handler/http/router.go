package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Polls *PollHandler
	Votes *VoteHandler
	Users *UserHandler
	Auth  *AuthHandler
}

func NewHandler(h Handlers, authn *Authenticator, allowedOrigins []string, l *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(l))
	r.Use(middleware.Recoverer)
	r.Use(cors(allowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
		})

		r.With(authn.Required).Get("/me", h.Users.GetMe)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.ListUsers)
			r.Get("/{id}", h.Users.GetUser)
			r.With(authn.Required).Delete("/{id}", h.Users.DeleteUser)
			r.Get("/{id}/polls", h.Users.ListUserPolls)
			r.Get("/{id}/votes", h.Users.ListUserVotes)
		})

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", h.Polls.ListPolls)
			r.Get("/public", h.Polls.ListPublicPolls)
			r.Get("/{id}", h.Polls.GetPoll)
			r.Get("/{id}/options", h.Polls.ListOptions)
			r.Get("/{id}/options/{optionId}", h.Polls.GetOption)
			r.Get("/{id}/results", h.Polls.GetResults)
			r.Get("/{id}/votes", h.Votes.ListPollVotes)
			r.With(authn.Optional).Post("/{id}/votes", h.Votes.VoteOnPoll)

			r.Group(func(r chi.Router) {
				r.Use(authn.Required)
				r.Post("/", h.Polls.CreatePoll)
				r.Get("/private", h.Polls.ListPrivatePolls)
				r.Patch("/{id}/visibility", h.Polls.UpdateVisibility)
				r.Delete("/{id}", h.Polls.DeletePoll)
				r.Post("/{id}/options", h.Polls.AddOption)
				r.Delete("/{id}/options/{optionId}", h.Polls.DeleteOption)
				r.Put("/{id}/votes", h.Votes.ChangeVote)
				r.Delete("/{id}/votes", h.Votes.Unvote)
				r.Get("/{id}/my-vote", h.Votes.GetMyVote)
			})
		})

		r.Route("/votes", func(r chi.Router) {
			r.Get("/", h.Votes.ListVotes)
			r.Get("/{id}", h.Votes.GetVote)
			r.With(authn.Optional).Delete("/{id}", h.Votes.DeleteVote)
		})

		r.Get("/options/{id}/votes", h.Votes.ListOptionVotes)

		r.Route("/cache", func(r chi.Router) {
			r.Use(authn.Required)
			r.Delete("/", h.Polls.ClearGlobalCache)
			r.Delete("/polls/{id}", h.Polls.ClearPollCache)
		})
	})

	return r
}
