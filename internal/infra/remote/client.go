package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pw-announcer/internal/domain/entity"
	"pw-announcer/internal/resilience/circuitbreaker"
)

// Config holds the immutable client configuration. It is injected at
// construction time; nothing in this package reads module-level state.
type Config struct {
	// BaseURL is the API origin, e.g. "https://api.penpencil.co".
	BaseURL string

	// Referer is sent on every request; the API rejects calls without it.
	Referer string

	// Token is the opaque bearer credential. Verified remotely only.
	Token entity.Credential

	// Timeout bounds every remote call.
	Timeout time.Duration
}

// DefaultConfig returns the production endpoint configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.penpencil.co",
		Referer: "https://www.pw.live/",
		Timeout: 10 * time.Second,
	}
}

// Client talks to the remote announcement service. All methods convert
// failures into the Failure shape; none of them panic or return raw
// transport errors.
type Client struct {
	cfg        Config
	httpClient *http.Client

	// randomID is the per-client Randomid header value the platform expects.
	randomID string

	catalogBreaker      *circuitbreaker.CircuitBreaker
	announcementBreaker *circuitbreaker.CircuitBreaker
}

// NewClient creates a Client with its own HTTP client and circuit breakers.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		cfg:                 cfg,
		httpClient:          &http.Client{Timeout: cfg.Timeout},
		randomID:            uuid.NewString(),
		catalogBreaker:      circuitbreaker.New(circuitbreaker.CatalogFetchConfig()),
		announcementBreaker: circuitbreaker.New(circuitbreaker.AnnouncementFetchConfig()),
	}
}

// envelope is the uniform response wrapper the platform uses: a success flag
// and either a data payload or an error object.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *remoteError    `json:"error"`
}

// remoteError is the structured error object inside a failed envelope.
type remoteError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// batchDTO mirrors the remote batch record shape.
type batchDTO struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	ExpiryDate string `json:"expiryDate"`
}

// announcementDTO mirrors the remote announcement record shape.
type announcementDTO struct {
	ID           string        `json:"_id"`
	Announcement string        `json:"announcement"`
	ScheduleTime string        `json:"scheduleTime"`
	Attachment   attachmentDTO `json:"attachment"`
}

// attachmentDTO mirrors the remote attachment record shape. An absent
// attachment decodes as the zero value.
type attachmentDTO struct {
	Name    string `json:"name"`
	BaseURL string `json:"baseUrl"`
	Key     string `json:"key"`
}

// do performs one authenticated request and classifies the response into
// exactly one of three branches: well-formed success (returns the data
// payload), well-formed error (returns a classified Failure), or
// malformed/unexpected (returns a transient Failure).
func (c *Client) do(ctx context.Context, method, path string) (json.RawMessage, *Failure) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, transientFailure(fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", c.cfg.Referer)
	req.Header.Set("Randomid", c.randomID)
	req.Header.Set("Authorization", "Bearer "+string(c.cfg.Token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transientFailure(fmt.Sprintf("execute request: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transientFailure(fmt.Sprintf("read response body: %v", err))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, transientFailure(fmt.Sprintf("malformed response (status %d): %v", resp.StatusCode, err))
	}

	if env.Success {
		return env.Data, nil
	}

	// Well-formed error branch: prefer the remote-supplied message/status,
	// fall back to the HTTP status when the error object is missing.
	status := resp.StatusCode
	message := fmt.Sprintf("remote reported failure (http %d)", resp.StatusCode)
	if env.Error != nil {
		if env.Error.Status != 0 {
			status = env.Error.Status
		}
		if env.Error.Message != "" {
			message = env.Error.Message
		}
	}

	switch {
	case status == 401 || status == 403:
		return nil, &Failure{Kind: KindCredentialInvalid, Message: message, Status: status}
	case status >= 500:
		return nil, &Failure{Kind: KindTransient, Message: message, Status: status}
	default:
		return nil, &Failure{Kind: KindRemoteData, Message: message, Status: status}
	}
}

// VerifyToken calls the remote verification endpoint and reports the
// credential verdict. Valid only when the remote explicitly confirms
// verification; structured rejections yield Invalid; transport-level
// failures yield Unknown.
func (c *Client) VerifyToken(ctx context.Context) (Verdict, *Failure) {
	data, failure := c.do(ctx, http.MethodPost, "/v3/oauth/verify-token")
	if failure != nil {
		if failure.Kind == KindTransient {
			return VerdictUnknown, failure
		}
		// Any structured non-confirming response means the credential is
		// rejected: the remote answered, it just said no.
		return VerdictInvalid, &Failure{Kind: KindCredentialInvalid, Message: failure.Message, Status: failure.Status}
	}

	var verification struct {
		IsVerified bool `json:"isVerified"`
	}
	if err := json.Unmarshal(data, &verification); err != nil {
		return VerdictUnknown, transientFailure(fmt.Sprintf("malformed verification payload: %v", err))
	}
	if !verification.IsVerified {
		return VerdictInvalid, &Failure{Kind: KindCredentialInvalid, Message: "token is not verified", Status: 401}
	}
	return VerdictValid, nil
}

// ListBatches retrieves the full set of batches visible to the credential,
// normalized to the Batch record shape. The call runs through the catalog
// circuit breaker; only transient failures count against the circuit.
func (c *Client) ListBatches(ctx context.Context) ([]entity.Batch, *Failure) {
	const path = "/batch-service/v1/batches/purchased-batches?amount=paid&page=1&type=ALL"

	result, err := c.catalogBreaker.Execute(func() (interface{}, error) {
		data, failure := c.do(ctx, http.MethodGet, path)
		if failure != nil && failure.Kind == KindTransient {
			return nil, failure
		}
		return fetchResult{data: data, failure: failure}, nil
	})
	if err != nil {
		return nil, asTransient(err)
	}

	fetched := result.(fetchResult)
	if fetched.failure != nil {
		return nil, fetched.failure
	}

	var dtos []batchDTO
	if err := json.Unmarshal(fetched.data, &dtos); err != nil {
		return nil, transientFailure(fmt.Sprintf("malformed batch payload: %v", err))
	}

	batches := make([]entity.Batch, 0, len(dtos))
	for _, dto := range dtos {
		batch := entity.Batch{
			ID:         dto.ID,
			Name:       dto.Name,
			Slug:       dto.Slug,
			StartDate:  dto.StartDate,
			EndDate:    dto.EndDate,
			ExpiryDate: dto.ExpiryDate,
		}
		if err := batch.Validate(); err != nil {
			slog.Warn("skipping batch with invalid record",
				slog.String("name", dto.Name),
				slog.Any("error", err))
			continue
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// ListAnnouncements retrieves the current announcement list for one batch in
// the remote's order (most-recent-first, not relied upon for correctness).
// Each attachment is normalized; an absent attachment is the zero value.
func (c *Client) ListAnnouncements(ctx context.Context, batchID string) ([]entity.Announcement, *Failure) {
	path := fmt.Sprintf("/v1/batches/%s/announcement?page=1", batchID)

	result, err := c.announcementBreaker.Execute(func() (interface{}, error) {
		data, failure := c.do(ctx, http.MethodGet, path)
		if failure != nil && failure.Kind == KindTransient {
			return nil, failure
		}
		return fetchResult{data: data, failure: failure}, nil
	})
	if err != nil {
		return nil, asTransient(err)
	}

	fetched := result.(fetchResult)
	if fetched.failure != nil {
		return nil, fetched.failure
	}

	var dtos []announcementDTO
	if err := json.Unmarshal(fetched.data, &dtos); err != nil {
		return nil, transientFailure(fmt.Sprintf("malformed announcement payload: %v", err))
	}

	announcements := make([]entity.Announcement, 0, len(dtos))
	for _, dto := range dtos {
		ann := entity.Announcement{
			ID:           dto.ID,
			BatchID:      batchID,
			Body:         dto.Announcement,
			ScheduleTime: dto.ScheduleTime,
			Attachment: entity.Attachment{
				Name:    dto.Attachment.Name,
				BaseURL: dto.Attachment.BaseURL,
				Key:     dto.Attachment.Key,
			},
		}
		if err := ann.Validate(); err != nil {
			slog.Warn("skipping announcement with invalid record",
				slog.String("batch_id", batchID),
				slog.Any("error", err))
			continue
		}
		announcements = append(announcements, ann)
	}
	return announcements, nil
}

// fetchResult carries a classified non-transient outcome through the circuit
// breaker without counting it as a circuit failure.
type fetchResult struct {
	data    json.RawMessage
	failure *Failure
}

// asTransient converts a breaker-level error (an open circuit or a transient
// Failure passed through as error) back into the uniform Failure shape.
func asTransient(err error) *Failure {
	if f, ok := err.(*Failure); ok {
		return f
	}
	return transientFailure(err.Error())
}
