package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront-service/internal/otp"
	"storefront-service/internal/tenant"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// Register handles owner registration: it provisions a brand-new tenant
// with its own isolated database.
func Register(provisioner *tenant.Provisioner, directory *tenant.Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)
		prometheus.RegisterCounter.Inc()
		defer prometheus.TrackDBOperation("insert")(time.Now())

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Phone    string `json:"phone,omitempty"`
		}

		if err := c.Bind(&req); err != nil {
			log.Error("Failed to parse registration request", zap.Error(err))
			prometheus.RecordAuthError("invalid_request")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		if req.Email == "" || req.Password == "" {
			log.Error("Invalid registration data",
				zap.String("email", req.Email),
				zap.Bool("password_provided", req.Password != ""))
			prometheus.RecordAuthError("incomplete_registration")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
		}

		// Check if an owner already exists for this email
		if _, err := directory.OwnerByEmail(c.Request().Context(), req.Email); err == nil {
			log.Error("Owner already exists", zap.String("email", req.Email))
			prometheus.RecordAuthError("email_already_exists")
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}

		// Hash password
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			prometheus.RecordAuthError("password_hash_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
		}

		owner, err := provisioner.Register(c.Request().Context(), req.Email, string(hashedPassword), req.Phone)
		if err != nil {
			log.Error("Failed to provision tenant", zap.Error(err))
			prometheus.RecordAuthError("provisioning_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
		}

		log.Info("Owner registered",
			zap.String("email", owner.Email),
			zap.String("tenant_id", owner.TenantID))
		return c.JSON(http.StatusCreated, echo.Map{
			"message": "Owner registered successfully",
			"owner": map[string]interface{}{
				"id":        owner.ID,
				"email":     owner.Email,
				"tenant_id": owner.TenantID,
			},
		})
	}
}

// Login authenticates an owner and issues a JWT carrying the tenant context.
func Login(directory *tenant.Directory, jwtUtil *jwtutil.JWTUtil) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)
		prometheus.LoginCounter.Inc()
		defer prometheus.TrackDBOperation("query")(time.Now())

		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		if err := c.Bind(&req); err != nil {
			log.Error("Failed to parse login request", zap.Error(err))
			prometheus.RecordAuthError("invalid_request")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		owner, err := directory.OwnerByEmail(c.Request().Context(), req.Email)
		if err != nil {
			log.Error("Owner not found", zap.String("email", req.Email))
			prometheus.RecordAuthError("owner_not_found")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}

		if !owner.Active {
			log.Warn("Login attempt for disabled owner", zap.String("email", req.Email))
			prometheus.RecordAuthError("owner_disabled")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
		}

		// Verify password
		if err := bcrypt.CompareHashAndPassword([]byte(owner.Password), []byte(req.Password)); err != nil {
			log.Error("Invalid password", zap.String("email", req.Email))
			prometheus.RecordAuthError("invalid_password")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}

		token, err := jwtUtil.GenerateToken(owner.Email, owner.ID, owner.TenantID, owner.StoreID, "owner")
		if err != nil {
			log.Error("Failed to generate token", zap.Error(err))
			prometheus.RecordAuthError("token_generation_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
		}

		log.Info("Owner logged in",
			zap.String("email", owner.Email),
			zap.String("tenant_id", owner.TenantID),
			zap.String("store_id", owner.StoreID))

		return c.JSON(http.StatusOK, echo.Map{
			"token": token,
			"owner": map[string]interface{}{
				"id":        owner.ID,
				"email":     owner.Email,
				"tenant_id": owner.TenantID,
				"store_id":  owner.StoreID,
			},
		})
	}
}

// RequestOTP issues a one-time passcode for phone verification.
func RequestOTP(service *otp.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)
		prometheus.OTPRequestCounter.Inc()

		var req struct {
			Phone string `json:"phone"`
		}

		if err := c.Bind(&req); err != nil || req.Phone == "" {
			log.Error("Invalid OTP request")
			prometheus.RecordAuthError("invalid_request")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone is required"})
		}

		if err := service.Request(c.Request().Context(), req.Phone); err != nil {
			log.Error("Failed to issue OTP", zap.Error(err))
			prometheus.RecordAuthError("otp_issue_failed")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not send code"})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "code sent"})
	}
}

// VerifyOTP checks a submitted one-time passcode.
func VerifyOTP(service *otp.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		var req struct {
			Phone string `json:"phone"`
			Code  string `json:"code"`
		}

		if err := c.Bind(&req); err != nil || req.Phone == "" || req.Code == "" {
			log.Error("Invalid OTP verification request")
			prometheus.RecordAuthError("invalid_request")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone and code are required"})
		}

		err := service.Verify(c.Request().Context(), req.Phone, req.Code)
		switch {
		case err == nil:
			return c.JSON(http.StatusOK, echo.Map{"message": "verified"})
		case errors.Is(err, otp.ErrTooManyAttempts):
			prometheus.RecordAuthError("otp_too_many_attempts")
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many attempts"})
		case errors.Is(err, otp.ErrExpired):
			prometheus.RecordAuthError("otp_expired")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "code expired"})
		default:
			log.Warn("OTP verification failed", zap.String("phone", req.Phone), zap.Error(err))
			prometheus.RecordAuthError("otp_invalid")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid code"})
		}
	}
}
