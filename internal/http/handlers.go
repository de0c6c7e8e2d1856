package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"spendwise/internal/auth"
	"spendwise/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and the backing store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]string{"templates": "ok", "store": "ok"}

	if s.templates == nil {
		checks["templates"] = "not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if s.ready != nil {
		if err := s.ready.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, r, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

type loginView struct {
	Username string
	Error    string
}

type pageView struct {
	Username   string
	MonthLabel string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFrom(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", loginView{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, "login.html", loginView{Error: "Invalid form submission"})
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		s.render(w, r, http.StatusUnprocessableEntity, "login.html",
			loginView{Username: username, Error: "Username and password are required"})
		return
	}

	sess, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.render(w, r, http.StatusUnauthorized, "login.html",
				loginView{Username: username, Error: "Invalid username or password"})
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Login failed",
			log.FieldOperation, log.OpLogin, log.FieldError, err)
		s.render(w, r, http.StatusInternalServerError, "login.html",
			loginView{Username: username, Error: "An error occurred. Please try again."})
		return
	}

	s.cookies.Set(w, sess.Token, sess.ExpiresAt)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.Token(r); token != "" {
		s.flows.drop(token)
		if err := s.auth.Logout(r.Context(), token); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to delete session",
				log.FieldOperation, log.OpLogout, log.FieldError, err)
		}
	}
	s.cookies.Clear(w)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	s.render(w, r, http.StatusOK, "index.html", pageView{
		Username:   u.Username,
		MonthLabel: s.clock().Format("January 2006"),
	})
}
