package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"statusrelay/pkg/contact"
	"statusrelay/pkg/log"
	"statusrelay/pkg/models"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/labstack/echo/v4"
)

const (
	contactForwardPath = "/api/contact"

	defaultContactListLimit = 50
	maxContactListLimit     = 500
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// submitContact handles POST /api/contact: validate, persist when a store
// is configured, then forward to the upstream backend.
func (srv *Server) submitContact(ctx echo.Context) error {
	var req contactRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"status": models.StatusError,
			"error":  "invalid request body",
		})
	}

	if err := contact.Validate(req.Name, req.Email, req.Message); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"status": models.StatusError,
			"error":  err.Error(),
		})
	}

	submission, stored, err := srv.storeSubmission(req)
	if err != nil {
		if errors.Is(err, contact.ErrInvalidSubmission) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"status": models.StatusError,
				"error":  err.Error(),
			})
		}
		log.Error().Err(err).Msg("Failed to store contact submission")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"status": models.StatusError,
			"error":  "failed to store submission",
		})
	}

	forwardErr := srv.forwardContact(ctx.Request().Context(), submission)
	if forwardErr != nil {
		log.Warn().
			Err(forwardErr).
			Str("submission_id", submission.ID).
			Bool("stored", stored).
			Msg("Contact forwarding failed")

		// Without local persistence a failed forward loses the submission,
		// so the caller has to know.
		if !stored {
			return ctx.JSON(http.StatusBadGateway, map[string]string{
				"status": models.StatusError,
				"error":  "forwarding failed: " + forwardErr.Error(),
			})
		}
	}

	return ctx.JSON(http.StatusOK, models.ContactReceipt{
		Status:    models.StatusSuccess,
		ID:        submission.ID,
		Forwarded: forwardErr == nil,
		Timestamp: timestamp(),
	})
}

func (srv *Server) storeSubmission(req contactRequest) (*models.ContactSubmission, bool, error) {
	if srv.contacts == nil {
		return &models.ContactSubmission{
			ID:        uuid.New().String(),
			Name:      req.Name,
			Email:     req.Email,
			Message:   req.Message,
			CreatedAt: time.Now().UTC(),
		}, false, nil
	}

	submission, err := srv.contacts.Create(req.Name, req.Email, req.Message)
	if err != nil {
		return nil, false, err
	}
	return submission, true, nil
}

// forwardContact relays the submission to the upstream backend. Connection
// errors are retried by the client; HTTP errors are surfaced as-is.
func (srv *Server) forwardContact(ctx context.Context, submission *models.ContactSubmission) error {
	payload, err := json.Marshal(submission)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		srv.upstreamURL+contactForwardPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	resp, err := srv.forwarder.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close forward response body")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.New("upstream rejected submission with status " + strconv.Itoa(resp.StatusCode))
	}

	return nil
}

// listContacts handles GET /api/contacts, newest first.
func (srv *Server) listContacts(ctx echo.Context) error {
	if srv.contacts == nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": contact.ErrStoreDisabled.Error(),
		})
	}

	limit := defaultContactListLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsed
	}
	if limit > maxContactListLimit {
		limit = maxContactListLimit
	}

	submissions, err := srv.contacts.List(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list contact submissions")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list submissions",
		})
	}

	return ctx.JSON(http.StatusOK, submissions)
}
