package controllers

import (
	"net/http"

	"github.com/Coco120903/BananaMeow-sub000/api/middleware"
	"github.com/Coco120903/BananaMeow-sub000/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// AdminPing lets an operator check that their token is accepted.
func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())
		responses.WriteSuccess(w, map[string]string{
			"scope":   "admin",
			"status":  "ok",
			"subject": actor.Subject,
			"role":    actor.Role,
		})
	}
}
