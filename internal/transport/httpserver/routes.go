package httpserver

import (
	"net/http"
	"time"

	"maisafe-go/internal/config"
	"maisafe-go/internal/transport/httpserver/handler"
	authmw "maisafe-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *authmw.BasicAuth) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(authmw.NewCORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", handlers.Health)
	r.Post("/auth/register", handlers.Register)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Post("/friends/invitation", handlers.CreateInvitation)
		r.Post("/friends/add", handlers.AddFriend)
		r.Delete("/friends/remove-for-patient", handlers.RemoveForPatient)
		r.Delete("/friends/unsubscribe-from-patient", handlers.UnsubscribeFromPatient)
		r.Get("/friends/get-med-friend", handlers.GetMedFriend)
		r.Get("/friends/get-patient", handlers.GetPatient)

		r.Post("/medicines/add_medication", handlers.AddMedication)
		r.Get("/medicines/get_medications_for_current_friend", handlers.GetMedicationsForCurrentFriend)
		r.Delete("/medicines/delete_medication/{id}", handlers.DeleteMedication)

		r.Post("/intake/add_or_update", handlers.AddOrUpdateIntake)
		r.Get("/intake/get_intakes_for_current_friend", handlers.GetIntakesForCurrentFriend)

		r.Get("/sync/pull", handlers.SyncPull)
		r.Post("/sync/push", handlers.SyncPush)
	})

	return r
}
