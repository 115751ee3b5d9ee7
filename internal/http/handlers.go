package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// authenticated resolves the bearer token, writing a 401 when it is missing
// or unknown.
func (s *Server) authenticated(w http.ResponseWriter, r *http.Request) (core.User, bool) {
	u, ok := s.backend.UserForToken(bearerToken(r))
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		return core.User{}, false
	}
	return u, true
}

// owned loads id and checks it belongs to u. Foreign transactions are
// reported as missing.
func (s *Server) owned(w http.ResponseWriter, r *http.Request, u core.User, id string) (core.Transaction, bool) {
	t, ok := s.backend.Get(id)
	if !ok || t.UserID != u.ID {
		writeError(w, r, http.StatusNotFound, "Transaction not found")
		return core.Transaction{}, false
	}
	return t, true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds core.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if sanitizeInput(creds.Email) == "" || creds.Password == "" {
		writeError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	resp, err := s.backend.Login(sanitizeInput(creds.Email), creds.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		applog.FromContext(r.Context()).InfoContext(r.Context(), "Login rejected", applog.FieldOperation, applog.OpLogin)
		writeError(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Login succeeded",
		applog.FieldOperation, applog.OpLogin,
		applog.FieldUserID, resp.User.ID)
	writeJSON(w, r, http.StatusOK, loginResponse{Resp: resp})
}

// handleLogout always succeeds; an unknown token has nothing to end.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.backend.Logout(bearerToken(r))
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticated(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, userResponse{User: u})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticated(w, r)
	if !ok {
		return
	}
	if r.PathValue("userID") != u.ID {
		writeError(w, r, http.StatusForbidden, "Forbidden")
		return
	}
	writeJSON(w, r, http.StatusOK, listResponse{Resp: s.backend.List(u.ID)})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticated(w, r)
	if !ok {
		return
	}
	if r.PathValue("userID") != u.ID {
		writeError(w, r, http.StatusForbidden, "Forbidden")
		return
	}

	var in core.CreateTransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	in.Title = sanitizeInput(in.Title)
	if err := in.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t := s.backend.Create(u.ID, in)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithUser(u.ID).
			WithTransaction(t.ID, string(t.Type), string(t.Category), t.Amount).
			ToSlice()...)
	writeJSON(w, r, http.StatusCreated, transactionResponse{Transaction: t})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticated(w, r)
	if !ok {
		return
	}
	t, ok := s.owned(w, r, u, r.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, transactionResponse{Transaction: t})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticated(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, ok := s.owned(w, r, u, id); !ok {
		return
	}

	var in core.UpdateTransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if in.Title != nil {
		title := sanitizeInput(*in.Title)
		in.Title = &title
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t, ok := s.backend.Update(id, in)
	if !ok {
		// Deleted concurrently.
		writeError(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldUserID, u.ID,
		applog.FieldTransactionID, id)
	writeJSON(w, r, http.StatusOK, transactionResponse{Transaction: t})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticated(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, ok := s.owned(w, r, u, id); !ok {
		return
	}
	s.backend.Delete(id)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldUserID, u.ID,
		applog.FieldTransactionID, id)
	w.WriteHeader(http.StatusNoContent)
}
