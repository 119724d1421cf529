// Package server exposes the scoring and issuance pipeline over HTTP.
// It translates typed refusals into status codes a UI can branch on
// without parsing error text: transient faults say try again, cooldowns
// carry a concrete wait, and already-satisfied requests read as success.
package server

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Callmedas69/ssa-sub000/internal/application"
	"github.com/Callmedas69/ssa-sub000/internal/domain"
)

// Response is the uniform JSON envelope for every endpoint.
type Response struct {
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`

	// Reason carries the machine-readable refusal reason, when present.
	Reason string `json:"reason,omitempty"`

	// RetryAfterSeconds is set on cooldown refusals.
	RetryAfterSeconds int64 `json:"retry_after_seconds,omitempty"`
}

// attestationRequest is the body of POST /v1/attestations.
type attestationRequest struct {
	// Caller is the authenticated address making the request. In a full
	// deployment this comes from a verified session, not the body; the
	// issuer still refuses a mismatch either way.
	Caller string `json:"caller"`

	// Subject is the address to attest.
	Subject string `json:"subject"`
}

// voucherRequest is the body of POST /v1/vouchers.
type voucherRequest struct {
	Subject string `json:"subject"`
}

// New builds the fiber application over the service facade.
func New(svc *application.Service, logger *slog.Logger, requestsPerMinute int) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	limiter := newKeyedLimiter(requestsPerMinute)

	app.Use(func(c *fiber.Ctx) error {
		if !limiter.Allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(Response{
				Status:  "ERROR",
				Message: "rate limit exceeded",
			})
		}
		return c.Next()
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(Response{Status: "OK"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/v1/score/:address", func(c *fiber.Ctx) error {
		index, err := svc.GetIndex(c.Context(), c.Params("address"))
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(Response{Status: "OK", Result: index})
	})

	app.Post("/v1/attestations", func(c *fiber.Ctx) error {
		var req attestationRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(Response{
				Status:  "ERROR",
				Message: "malformed request body",
			})
		}
		signed, err := svc.GetAttestation(c.Context(), req.Caller, req.Subject)
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(Response{Status: "OK", Result: signed})
	})

	app.Post("/v1/vouchers", func(c *fiber.Ctx) error {
		var req voucherRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(Response{
				Status:  "ERROR",
				Message: "malformed request body",
			})
		}
		signed, err := svc.GetMintVoucher(c.Context(), req.Subject)
		if err != nil {
			return writeError(c, logger, err)
		}
		return c.JSON(Response{Status: "OK", Result: signed})
	})

	return app
}

// writeError maps pipeline errors onto the response envelope.
func writeError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	if refusal, ok := domain.AsRefusal(err); ok {
		switch refusal.Reason {
		case domain.RefusalAlreadyMinted:
			// Idempotent success: the action the caller wanted is done.
			return c.JSON(Response{Status: "OK", Reason: string(refusal.Reason)})
		case domain.RefusalCooldown:
			retry := int64(refusal.RetryAfter / time.Second)
			c.Set("Retry-After", strconv.FormatInt(retry, 10))
			return c.Status(fiber.StatusTooManyRequests).JSON(Response{
				Status:            "REFUSED",
				Reason:            string(refusal.Reason),
				RetryAfterSeconds: retry,
				Message:           "submission interval not elapsed",
			})
		case domain.RefusalPaused:
			return c.Status(fiber.StatusServiceUnavailable).JSON(Response{
				Status:  "REFUSED",
				Reason:  string(refusal.Reason),
				Message: "attestation contract is paused",
			})
		case domain.RefusalSubjectMismatch:
			return c.Status(fiber.StatusForbidden).JSON(Response{
				Status:  "REFUSED",
				Reason:  string(refusal.Reason),
				Message: "subject does not match the authenticated caller",
			})
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidSubject):
		return c.Status(fiber.StatusBadRequest).JSON(Response{
			Status:  "ERROR",
			Message: "invalid subject address",
		})
	case errors.Is(err, domain.ErrSignerUnavailable):
		logger.Error("signing credential unavailable", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(Response{
			Status:  "ERROR",
			Message: "service unavailable",
		})
	default:
		logger.Error("request failed", "err", err)
		return c.Status(fiber.StatusBadGateway).JSON(Response{
			Status:  "ERROR",
			Message: "temporary failure, try again",
		})
	}
}
