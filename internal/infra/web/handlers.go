package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"audio-track-subscription/internal/domain"
	"audio-track-subscription/internal/domain/model"
	"audio-track-subscription/internal/infra/payment/razorpay"
	"audio-track-subscription/internal/infra/redis"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := s.userUC.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "name, email and password are required")
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}
	token, err := s.auth.Mint(user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := s.userUC.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid email or password")
		default:
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}
	token, err := s.auth.Mint(user.ID, user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalogUC.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) handleCategoryTracks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	category, tracks, err := s.catalogUC.CategoryTracks(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list tracks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "tracks": tracks})
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid track id")
		return
	}
	var uidPtr *int64
	if uid, ok := userIDFrom(r.Context()); ok {
		uidPtr = &uid
	}
	access, err := s.catalogUC.GetTrack(r.Context(), id, uidPtr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "track not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load track")
		return
	}
	if access.NeedSubscription {
		// The media path is already cleared on the returned copy.
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"track":             access.Track,
			"need_subscription": true,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"track": access.Track})
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	uid, _ := userIDFrom(r.Context())
	trackID, err := strconv.ParseInt(r.URL.Query().Get("track_id"), 10, 64)
	if err != nil || trackID <= 0 {
		writeError(w, http.StatusBadRequest, "track_id is required")
		return
	}
	result, err := s.statusUC.Resolve(r.Context(), uid, trackID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "track not found")
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "invalid request")
		default:
			writeError(w, http.StatusInternalServerError, "failed to resolve status")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleActiveTracks(w http.ResponseWriter, r *http.Request) {
	uid, _ := userIDFrom(r.Context())
	tracks, err := s.catalogUC.ActiveTracks(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list active tracks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

type generateOrderRequest struct {
	TrackID int64   `json:"track_id"`
	Amount  float64 `json:"amount"` // major units
}

func (s *Server) handleGenerateOrder(w http.ResponseWriter, r *http.Request) {
	uid, _ := userIDFrom(r.Context())

	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), redis.OrderKey(uid), orderRateLimit, orderRateWindow)
		if err != nil {
			s.log.Error().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			writeError(w, http.StatusTooManyRequests, "too many order attempts, try again later")
			return
		}
	}

	var req generateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	order, err := s.orderUC.CreateOrder(r.Context(), uid, req.Amount, req.TrackID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "track_id and a positive amount are required")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			msg := "order creation failed"
			var gerr *razorpay.GatewayError
			if errors.As(err, &gerr) && gerr.Description != "" {
				msg = gerr.Description
			}
			writeError(w, http.StatusBadGateway, msg)
		}
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// handlePaymentSuccess settles the redirect path. The gateway sends the
// browser here with the razorpay_* query parameters; a failed signature check
// is an outcome, not a transport fault, so it answers 200 with an explicit
// message the checkout page displays verbatim.
func (s *Server) handlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orderID := q.Get("razorpay_order_id")
	paymentID := q.Get("razorpay_payment_id")
	signature := q.Get("razorpay_signature")

	result, err := s.settlementUC.Capture(r.Context(), orderID, paymentID, signature)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorizedPayment):
			writeJSON(w, http.StatusOK, map[string]string{"msg": "Unauthorized Payment"})
		case errors.Is(err, domain.ErrTransactionNotFound), errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "unknown order")
		case errors.Is(err, domain.ErrSecretNotConfigured):
			writeError(w, http.StatusInternalServerError, "payment verification unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "settlement failed")
		}
		return
	}
	if result.AlreadyCaptured {
		writeJSON(w, http.StatusOK, map[string]string{"msg": "success", "description": "alreadydone"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "success"})
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
