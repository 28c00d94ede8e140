package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/stitchforge/embroidery-studio/pkg/logger"
)

// Server is an in-memory stand-in for the embroidery backend. It speaks the
// same envelope shapes over the same routes, seeded with two accounts
// (stitcher/hunter22 and admin/admin123), so the client and CLI can run
// end-to-end without the real service.
type Server struct {
	logger *logger.Logger
	state  *state
	secret []byte
	router chi.Router
}

// New builds the stub backend with freshly seeded state.
func New(logg *logger.Logger) (*Server, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &Server{
		logger: logg,
		state:  newState(),
		secret: []byte("embroidery-dev-secret"),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		recoverer(s.logger),
		requestID(s.logger),
		logging(s.logger),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health/", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login/", s.handleLogin)
			r.Post("/register/", s.handleRegister)
			r.Post("/google/", s.handleGoogleLogin)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/profile/", s.handleProfile)
				r.Put("/profile/", s.handleUpdateProfile)
				r.Post("/change-password/", s.handleChangePassword)
			})
			r.Post("/forgot-password/", s.handleAck)
			r.Post("/reset-password/", s.handleAck)
			r.Post("/verify-email/", s.handleAck)
			r.Post("/resend-verification/", s.handleAck)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/tokens", func(r chi.Router) {
				r.Get("/balance/", s.handleBalance)
				r.Get("/costs/", s.handleCosts)
				r.Get("/packages/", s.handlePackages)
				r.Get("/transactions/", s.handleTransactions)
			})

			r.Route("/designs", func(r chi.Router) {
				r.Post("/generate-ai-image/", s.handleGenerate)
				r.Post("/generate-embroidery-preview/", s.handlePreview)
				r.Get("/list/", s.handleListDesigns)
				r.Post("/features/add/", s.handleAttachFeature)
				r.Post("/features/remove/", s.handleDetachFeature)
				r.Get("/{designID}/", s.handleGetDesign)
				r.Put("/{designID}/update/", s.handleUpdateDesign)
				r.Delete("/{designID}/delete/", s.handleDeleteDesign)
				r.Get("/{designID}/features/", s.handleDesignFeatures)
			})

			r.Get("/features/available/", s.handleAvailableFeatures)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.handleViewCart)
				r.Post("/add/{designID}/", s.handleAddToCart)
				r.Delete("/{itemID}/remove/", s.handleRemoveCartItem)
				r.Post("/clear/", s.handleClearCart)
				r.Post("/validate/", s.handleValidateCart)
				r.Post("/checkout/", s.handleCheckout)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/list/", s.handleListOrders)
				r.Get("/{orderID}/", s.handleGetOrder)
				r.Post("/{orderID}/retry/", s.handleRetryOrder)
				r.Get("/{orderID}/download/{format}/", s.handleDownload)
			})

			r.Route("/payment", func(r chi.Router) {
				r.Post("/create-checkout/", s.handleCreateCheckout)
				r.Get("/verify/", s.handleVerifyPayment)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Get("/conversations/", s.handleConversations)
				r.Get("/conversations/{conversationID}/", s.handleConversation)
				r.Post("/conversations/{conversationID}/", s.handlePostMessage)
				r.Get("/unread-count/", s.handleUnreadCount)
			})

			r.Get("/token-packages/", s.handlePackages)

			r.Group(func(r chi.Router) {
				r.Use(s.requireStaff)

				r.Route("/admin", func(r chi.Router) {
					r.Get("/orders/", s.handleAdminListOrders)
					r.Get("/orders/{orderID}/", s.handleAdminGetOrder)
					r.Post("/orders/{orderID}/update-status/", s.handleAdminUpdateStatus)
					r.Get("/orders/{orderID}/resources/", s.handleAdminResources)
					r.Delete("/resources/{resourceID}/delete/", s.handleAdminDeleteResource)
					r.Get("/embroidery-size-pricing/", s.handleListTiers)
					r.Post("/embroidery-size-pricing/", s.handleCreateTier)
					r.Put("/embroidery-size-pricing/{tierID}/", s.handleUpdateTier)
					r.Delete("/embroidery-size-pricing/{tierID}/", s.handleDeleteTier)
					r.Get("/token-costs/", s.handleAdminCosts)
					r.Post("/token-costs/", s.handleAdminSetCosts)
				})

				r.Post("/token-packages/", s.handleCreatePackage)
				r.Put("/token-packages/{packageID}/", s.handleUpdatePackage)
				r.Delete("/token-packages/{packageID}/", s.handleDeletePackage)
				r.Post("/token-packages/{packageID}/popularity/", s.handleMarkPopular)
			})
		})
	})

	return r
}

type ctxKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := s.authenticate(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), username)))
	})
}

func (s *Server) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct := s.account(r)
		if acct == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !acct.profile.IsAdmin() {
			writeError(w, http.StatusForbidden, "staff access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(header[len(prefix):], claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", false
	}

	s.state.mu.Lock()
	_, known := s.state.accounts[subject]
	s.state.mu.Unlock()
	return subject, known
}

func (s *Server) issueToken(username string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"iat": s.state.now().Unix(),
		"exp": s.state.now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// account resolves the authenticated account, re-checking the token so staff
// routes cannot be reached with a stale context.
func (s *Server) account(r *http.Request) *account {
	username := userFromContext(r.Context())
	if username == "" {
		var ok bool
		username, ok = s.authenticate(r)
		if !ok {
			return nil
		}
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.state.accounts[username]
}

func contextWithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

func userFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

func urlInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

func decode(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["success"] = true
	writeJSON(w, http.StatusOK, payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]any{"status": "ok"})
}

func (s *Server) handleAck(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]any{"message": "ok"})
}
