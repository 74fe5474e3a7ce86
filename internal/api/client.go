package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pz-mod-manager/internal/models"

	log "github.com/sirupsen/logrus"
)

// Custom Error Types
var (
	ErrRateLimited  = errors.New("API rate limit exceeded")
	ErrUnauthorized = errors.New("API request unauthorized (check API key)")
	ErrNotFound     = errors.New("API resource not found")
	ErrServerError  = errors.New("API server error")
)

const SteamApiBaseUrl = "https://api.steampowered.com"

// Client talks to the Steam Web API (IPublishedFileService). All failures
// surface as wrapped sentinel errors; callers treat them as non-fatal and
// skip enrichment.
type Client struct {
	ApiKey     string
	AppID      string
	PageSize   int
	HttpClient *http.Client
}

// NewClient creates a Steam Web API client. A nil httpClient gets a default
// with the configured timeout.
func NewClient(apiKey string, httpClient *http.Client, cfg models.Config) *Client {
	if httpClient == nil {
		timeout := time.Duration(cfg.ApiClientTimeoutSec) * time.Second
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	pageSize := cfg.SearchPageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	appID := cfg.AppID
	if appID == "" {
		appID = "108600"
	}
	return &Client{
		ApiKey:     apiKey,
		AppID:      appID,
		PageSize:   pageSize,
		HttpClient: httpClient,
	}
}

// GetDetails batch-fetches workshop item details. Items the API does not
// know (result != 1) are omitted from the result. An empty input performs no
// request.
func (c *Client) GetDetails(workshopIDs []string) ([]models.PublishedFileDetail, error) {
	if len(workshopIDs) == 0 {
		return nil, nil
	}

	values := url.Values{}
	values.Add("key", c.ApiKey)
	for i, id := range workshopIDs {
		values.Add(fmt.Sprintf("publishedfileids[%d]", i), id)
	}

	var response models.DetailsResponse
	if err := c.doGet("/IPublishedFileService/GetDetails/v1/", values, &response); err != nil {
		return nil, err
	}

	found := make([]models.PublishedFileDetail, 0, len(response.Response.PublishedFileDetails))
	for _, item := range response.Response.PublishedFileDetails {
		if item.Result == 1 {
			found = append(found, item)
		}
	}
	log.Debugf("GetDetails resolved %d of %d workshop ids", len(found), len(workshopIDs))
	return found, nil
}

// GetDetail fetches a single workshop item. Returns nil when the item does
// not exist.
func (c *Client) GetDetail(workshopID string) (*models.PublishedFileDetail, error) {
	details, err := c.GetDetails([]string{workshopID})
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

// QueryFiles searches the workshop by text and optional required tags,
// returning one page of results plus the total match count.
func (c *Client) QueryFiles(text string, tags []string, page int) (models.SearchResult, error) {
	if page < 1 {
		page = 1
	}
	values := url.Values{}
	values.Add("key", c.ApiKey)
	values.Add("appid", c.AppID)
	values.Add("search_text", text)
	values.Add("page", fmt.Sprintf("%d", page))
	values.Add("numperpage", fmt.Sprintf("%d", c.PageSize))
	values.Add("return_details", "true")
	values.Add("return_tags", "true")
	values.Add("return_previews", "true")
	for i, tag := range tags {
		values.Add(fmt.Sprintf("requiredtags[%d]", i), tag)
	}

	var response models.QueryFilesResponse
	if err := c.doGet("/IPublishedFileService/QueryFiles/v1/", values, &response); err != nil {
		return models.SearchResult{}, err
	}
	return models.SearchResult{
		Total: response.Response.Total,
		Items: response.Response.PublishedFileDetails,
	}, nil
}

// GetTagList fetches the workshop tag vocabulary for the app.
func (c *Client) GetTagList() ([]models.FileTag, error) {
	values := url.Values{}
	values.Add("key", c.ApiKey)
	values.Add("appid", c.AppID)

	var response models.TagListResponse
	if err := c.doGet("/IPublishedFileService/GetTags/v1/", values, &response); err != nil {
		return nil, err
	}
	return response.Response.Tags, nil
}

// doGet performs a GET with retry on rate limits and server errors. Auth and
// not-found failures are never retried.
func (c *Client) doGet(endpoint string, values url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", SteamApiBaseUrl, endpoint, values.Encode())

	const maxRetries = 3
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequest("GET", reqURL, nil)
		if err != nil {
			return fmt.Errorf("error creating request for %s: %w", endpoint, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.HttpClient.Do(req)
		if err != nil {
			// Timeouts and transport failures are not retried; the caller
			// decides whether the operation is worth a second attempt.
			return fmt.Errorf("http request failed: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("error reading response body: %w", err)
			}
			if err := json.Unmarshal(body, out); err != nil {
				log.Debugf("Response body causing unmarshal error: %s", string(body))
				return fmt.Errorf("error unmarshalling response JSON: %w", err)
			}
			return nil
		case http.StatusTooManyRequests:
			lastErr = ErrRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrUnauthorized
		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound
		default:
			if resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("%w (status code %d)", ErrServerError, resp.StatusCode)
			} else {
				resp.Body.Close()
				return fmt.Errorf("API request failed with status %d", resp.StatusCode)
			}
		}
		resp.Body.Close()

		if attempt < maxRetries-1 {
			sleep := time.Duration(attempt+1) * 3 * time.Second
			if errors.Is(lastErr, ErrRateLimited) {
				sleep = time.Duration(attempt+1) * 5 * time.Second
			}
			log.WithError(lastErr).Warnf("Retrying (%d/%d) after %s...", attempt+1, maxRetries, sleep)
			time.Sleep(sleep)
		}
	}
	log.WithError(lastErr).Errorf("Request to %s failed after %d attempts", endpoint, maxRetries)
	return lastErr
}
