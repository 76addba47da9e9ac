package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"keystone-tracker/internal/config"
	"keystone-tracker/internal/constants"
	"keystone-tracker/internal/domain"

	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

// ProfileFields is sent on every profile request; extra fields from
// configuration are appended after it.
const ProfileFields = "mythic_plus_best_runs,mythic_plus_alternate_runs"

type RaiderIOClient struct {
	baseURL     string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewRaiderIOClient(cfg *config.Config) *RaiderIOClient {
	return &RaiderIOClient{
		baseURL: cfg.APIBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *RaiderIOClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RaiderIOClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-RateLimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-RateLimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-RateLimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// GetCharacterProfile fetches one character's season profile. extraFields is
// a comma-separated list appended to the always-requested run lists.
func (c *RaiderIOClient) GetCharacterProfile(ctx context.Context, region, realm, name, extraFields string) (*CharacterProfileResponse, error) {
	fields := ProfileFields
	if extraFields != "" {
		fields = fields + "," + extraFields
	}
	requestURL := fmt.Sprintf("%s/characters/profile?region=%s&realm=%s&name=%s&fields=%s",
		c.baseURL,
		url.QueryEscape(region),
		url.QueryEscape(realm),
		url.QueryEscape(name),
		url.QueryEscape(fields),
	)
	return doRequest[CharacterProfileResponse](ctx, c, requestURL)
}

// doRequest performs a GET with a bounded transport-level retry on 429 and
// 5xx responses. 404 classifies as NotFound and everything else non-2xx as
// ServiceError; neither is retried here.
func doRequest[T any](ctx context.Context, client *RaiderIOClient, requestURL string) (*T, error) {
	var body []byte

	backoff := retry.WithMaxRetries(constants.TransportRetries, retry.NewExponential(constants.TransportBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(requestURL)
		req.Header.SetMethod(fasthttp.MethodGet)

		var err error
		if deadline, ok := ctx.Deadline(); ok {
			err = client.client.DoDeadline(req, resp, deadline)
		} else {
			err = client.client.Do(req, resp)
		}
		if err != nil {
			return retry.RetryableError(domain.WrapError(domain.FailureService, "request failed", err))
		}

		client.updateRateLimit(resp)

		switch status := resp.StatusCode(); {
		case status == fasthttp.StatusOK:
			body = append(body[:0], resp.Body()...)
			return nil
		case status == fasthttp.StatusNotFound:
			return domain.Errorf(domain.FailureNotFound, "characters/profile returned 404")
		case status == fasthttp.StatusTooManyRequests || status >= 500:
			return retry.RetryableError(domain.Errorf(domain.FailureService, "characters/profile returned %d", status))
		default:
			return domain.Errorf(domain.FailureService, "characters/profile returned %d", status)
		}
	})
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, domain.WrapError(domain.FailureMalformed, "failed to decode response", err)
	}
	return &result, nil
}

type CharacterProfileResponse struct {
	Name           string `json:"name"`
	Race           string `json:"race"`
	Class          string `json:"class"`
	ActiveSpecName string `json:"active_spec_name"`
	Faction        string `json:"faction"`
	Realm          string `json:"realm"`

	// Pointers so an absent list (field not honored by the service) can be
	// told apart from an empty one.
	MythicPlusBestRuns      *[]ProfileRun `json:"mythic_plus_best_runs"`
	MythicPlusAlternateRuns *[]ProfileRun `json:"mythic_plus_alternate_runs"`
}

type ProfileRun struct {
	Dungeon             string     `json:"dungeon"`
	ShortName           string     `json:"short_name"`
	MythicLevel         int        `json:"mythic_level"`
	CompletedAt         time.Time  `json:"completed_at"`
	ClearTimeMS         int64      `json:"clear_time_ms"`
	ParTimeMS           int64      `json:"par_time_ms"`
	NumKeystoneUpgrades int        `json:"num_keystone_upgrades"`
	Score               float64    `json:"score"`
	Affixes             []RunAffix `json:"affixes"`
}

type RunAffix struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
