package www

import (
	"net/http"
	"strings"

	"eaisdo/log"
	"eaisdo/session"
)

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	next := safeNext(r.PostFormValue("next"))

	// Let the stored token settle before overwriting it.
	h.waitReady(r)
	sess := session.FromContext(r.Context())
	username := strings.TrimSpace(r.PostFormValue("username"))

	ok, err := sess.Login(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		log.Error().Err(err).Msg("www: login")
		h.addFlash(w, r, flashError, "Не удалось сохранить сессию")
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.engine.EmitLogin(username, r.RemoteAddr, ok)
	if !ok {
		h.addFlash(w, r, flashError, "Неверное имя пользователя или пароль")
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.addFlash(w, r, flashSuccess, "Авторизация успешна!")
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.waitReady(r)
	sess := session.FromContext(r.Context())
	if err := sess.Logout(r.Context()); err != nil {
		log.Warn().Err(err).Msg("www: logout")
	}
	h.engine.EmitLogout(h.actor(), r.RemoteAddr)
	h.addFlash(w, r, flashInfo, "Вы вышли из системы")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
