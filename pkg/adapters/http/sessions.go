package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/promowizard/pkg/adapters/memory"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/sanitize"
	"github.com/aretw0/promowizard/pkg/wizard"
	"github.com/go-chi/chi/v5"
)

// SessionResponse is returned by every session route.
type SessionResponse struct {
	SessionID string               `json:"sessionId"`
	OK        bool                 `json:"ok"`
	Error     string               `json:"error,omitempty"`
	View      *wizard.View         `json:"view,omitempty"`
	Events    []memory.ShellEvent  `json:"events"`
	Diff      *domain.SnapshotDiff `json:"diff,omitempty"`
	Result    *domain.SubmitResult `json:"result,omitempty"`
}

// action runs against a controller and reports whether it took effect.
type action func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error

// run executes fn under the session lock and writes the resulting view, the
// drained shell events and the selection diff.
func (s *Server) run(w http.ResponseWriter, r *http.Request, status int, fn action) {
	id := chi.URLParam(r, "id")
	resp := SessionResponse{SessionID: id, OK: true}

	err := s.sessions.Do(r.Context(), id, func(ctx context.Context, c *wizard.Controller) error {
		before := c.Store().State()
		fnErr := fn(ctx, c, &resp)
		view := c.View()
		resp.View = &view
		resp.Diff = domain.Diff(&before, c.Store().State())
		return fnErr
	})

	if errors.Is(err, domain.ErrSessionNotFound) {
		s.shells.Drop(id)
		s.writeJSON(w, http.StatusNotFound, SessionResponse{SessionID: id, Error: err.Error(), Events: []memory.ShellEvent{}})
		return
	}

	resp.Events = s.shells.For(id).Drain()
	if resp.Events == nil {
		resp.Events = []memory.ShellEvent{}
	}
	if resp.View != nil && resp.View.Closed {
		s.shells.Drop(id)
	}
	s.streams.BroadcastDiff(id, resp.Diff)

	if err != nil {
		resp.OK = false
		resp.Error = err.Error()
		status = errorStatus(err)
		s.logger.Warn("Session action failed", "session_id", id, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, resp)
}

func errorStatus(err error) int {
	var svcErr *domain.ServiceError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrItemNotOnPage):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPageOutOfRange),
		errors.Is(err, domain.ErrNotFinalStep),
		errors.Is(err, domain.ErrSubmitInProgress),
		errors.Is(err, domain.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &svcErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Invalid request", "path", r.URL.Path, "err", err)
	s.writeJSON(w, http.StatusBadRequest, SessionResponse{
		SessionID: chi.URLParam(r, "id"),
		Error:     err.Error(),
		Events:    []memory.ShellEvent{},
	})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.logger.Error("List sessions failed", "err", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccountID string `json:"accountId"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &body); err != nil {
			s.badRequest(w, r, err)
			return
		}
	}

	id, err := s.sessions.Open(r.Context(), body.AccountID)
	if err != nil {
		s.logger.Error("Open session failed", "err", err)
		http.Error(w, "failed to open session", http.StatusInternalServerError)
		return
	}

	rctx := chi.RouteContext(r.Context())
	rctx.URLParams.Add("id", id)
	s.run(w, r, http.StatusCreated, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		return nil
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		return nil
	})
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.sessions.Close(r.Context(), id)
	s.shells.Drop(id)
	if err != nil {
		s.writeJSON(w, errorStatus(err), SessionResponse{SessionID: id, Error: err.Error(), Events: []memory.ShellEvent{}})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setPromotionName(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name *string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if body.Name == nil {
		s.badRequest(w, r, errors.New("name is required"))
		return
	}
	name, err := sanitize.Line(*body.Name)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		c.NameStep().SetName(name)
		return nil
	})
}

func (s *Server) nextStep(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		resp.OK = c.Next(ctx)
		return nil
	})
}

func (s *Server) previousStep(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		resp.OK = c.Previous(ctx)
		return nil
	})
}

func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		return nil
	})
}

func (s *Server) nextCatalogPage(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		return c.Products().NextPage(ctx)
	})
}

func (s *Server) previousCatalogPage(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		return c.Products().PreviousPage(ctx)
	})
}

func (s *Server) toggleProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Selected *bool `json:"selected"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if body.Selected == nil {
		s.badRequest(w, r, errors.New("selected is required"))
		return
	}
	productID := chi.URLParam(r, "productID")
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		return c.Products().Toggle(productID, *body.Selected)
	})
}

func (s *Server) setDiscount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Discount any `json:"discount"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, r, err)
		return
	}
	productID := chi.URLParam(r, "productID")
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		var err error
		switch v := body.Discount.(type) {
		case float64:
			_, err = c.Products().SetDiscount(productID, v)
		case string:
			_, err = c.Products().EditDiscount(productID, v)
		default:
			_, err = c.Products().SetDiscount(productID, 0)
		}
		return err
	})
}

func (s *Server) setStores(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Stores []domain.StoreSelection `json:"stores"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.badRequest(w, r, err)
		return
	}
	stores, err := sanitize.Stores(body.Stores)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		c.StoreStep().SetStores(stores)
		return nil
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, http.StatusOK, func(ctx context.Context, c *wizard.Controller, resp *SessionResponse) error {
		res, err := c.Submit(ctx)
		if err == nil {
			resp.Result = &res
		}
		return err
	})
}
