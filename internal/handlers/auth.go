package handlers

import (
	"net/http"
	"net/url"

	"github.com/patrickashi/vi-predict/internal/session"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
)

type authPage struct {
	Page
	Email     string
	Username  string
	FirstName string
	LastName  string
}

// handleIndex routes the root path: signed-in users land on the dashboard,
// everyone else gets the landing page.
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, ok := h.Sessions.FromRequest(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render.HTML(w, http.StatusOK, "home", authPage{Page: Page{Title: "Home"}})
}

func (h *Handlers) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.Sessions.FromRequest(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render.HTML(w, http.StatusOK, "signin", authPage{
		Page: Page{Title: "Sign in", Flash: r.URL.Query().Get("flash")},
	})
}

// handleSignIn exchanges the submitted credentials for a backend token and
// binds it to a new browser session. Where the user lands depends on whether
// they have finished onboarding.
func (h *Handlers) handleSignIn(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	token, onboarded, err := h.Account.SignIn(r.Context(), email, password)
	if err != nil {
		h.render.HTML(w, http.StatusUnauthorized, "signin", authPage{
			Page:  Page{Title: "Sign in", Error: errorMessage(err)},
			Email: email,
		})
		return
	}

	id, err := h.Sessions.Create(r.Context(), token, email)
	if err != nil {
		h.render.HTML(w, http.StatusInternalServerError, "signin", authPage{
			Page:  Page{Title: "Sign in", Error: "Something went wrong, please try again."},
			Email: email,
		})
		return
	}

	session.SetSessionCookie(w, id)
	if !onboarded {
		http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handlers) handleSignUpPage(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, http.StatusOK, "signup", authPage{Page: Page{Title: "Sign up"}})
}

// handleSignUp registers the account and sends the user to OTP verification
func (h *Handlers) handleSignUp(w http.ResponseWriter, r *http.Request) {
	req := predictapi.SignUpRequest{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		FirstName:       r.FormValue("first_name"),
		LastName:        r.FormValue("last_name"),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
	}

	if err := h.Account.SignUp(r.Context(), req); err != nil {
		h.render.HTML(w, http.StatusBadRequest, "signup", authPage{
			Page:      Page{Title: "Sign up", Error: errorMessage(err)},
			Email:     req.Email,
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		return
	}

	http.Redirect(w, r, "/verify?email="+url.QueryEscape(req.Email), http.StatusSeeOther)
}

func (h *Handlers) handleVerifyPage(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, http.StatusOK, "verify", authPage{
		Page:  Page{Title: "Verify email", Flash: r.URL.Query().Get("flash")},
		Email: r.URL.Query().Get("email"),
	})
}

func (h *Handlers) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	code := r.FormValue("otp_code")

	if err := h.Account.VerifyOTP(r.Context(), email, code); err != nil {
		h.render.HTML(w, http.StatusBadRequest, "verify", authPage{
			Page:  Page{Title: "Verify email", Error: errorMessage(err)},
			Email: email,
		})
		return
	}

	redirectWithFlash(w, r, "/signin", "Email verified, you can sign in now.")
}

func (h *Handlers) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	if err := h.Account.ResendOTP(r.Context(), email); err != nil {
		h.render.HTML(w, http.StatusBadRequest, "verify", authPage{
			Page:  Page{Title: "Verify email", Error: errorMessage(err)},
			Email: email,
		})
		return
	}

	http.Redirect(w, r, "/verify?email="+url.QueryEscape(email)+"&flash="+url.QueryEscape("A new code is on its way."), http.StatusSeeOther)
}

func (h *Handlers) handleForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, http.StatusOK, "forgot_password", authPage{Page: Page{Title: "Forgot password"}})
}

func (h *Handlers) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")

	message, err := h.Account.ForgotPassword(r.Context(), email)
	if err != nil {
		h.render.HTML(w, http.StatusBadRequest, "forgot_password", authPage{
			Page:  Page{Title: "Forgot password", Error: errorMessage(err)},
			Email: email,
		})
		return
	}
	if message == "" {
		message = "Check your email for a reset code."
	}

	http.Redirect(w, r, "/reset-password?email="+url.QueryEscape(email)+"&flash="+url.QueryEscape(message), http.StatusSeeOther)
}

func (h *Handlers) handleResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render.HTML(w, http.StatusOK, "reset_password", authPage{
		Page:  Page{Title: "Reset password", Flash: r.URL.Query().Get("flash")},
		Email: r.URL.Query().Get("email"),
	})
}

func (h *Handlers) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	req := predictapi.ResetPasswordRequest{
		Email:              r.FormValue("email"),
		OTPCode:            r.FormValue("otp_code"),
		NewPassword:        r.FormValue("new_password"),
		NewPasswordConfirm: r.FormValue("new_password_confirm"),
	}

	message, err := h.Account.ResetPassword(r.Context(), req)
	if err != nil {
		h.render.HTML(w, http.StatusBadRequest, "reset_password", authPage{
			Page:  Page{Title: "Reset password", Error: errorMessage(err)},
			Email: req.Email,
		})
		return
	}
	if message == "" {
		message = "Password reset, you can sign in now."
	}

	redirectWithFlash(w, r, "/signin", message)
}

// handleSignOut tears down the local session. The backend token is revoked on
// a best-effort basis.
func (h *Handlers) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.Sessions.FromRequest(r); ok {
		h.Account.SignOut(r.Context(), sess.Token)
		h.Fixtures.DropDrafts(sess.ID)
		h.Sessions.Clear(r.Context(), sess.ID)
	}
	session.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
