package pictures

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/farsightlab/arv-backend/internal/platform/logger"
	"github.com/farsightlab/arv-backend/internal/types"
)

type unsplashSource struct {
	log        *logger.Logger
	baseURL    string
	accessKey  string
	query      string
	httpClient *http.Client
}

// NewUnsplashSource builds the production picture source against the
// Unsplash random-photo API. Requires UNSPLASH_ACCESS_KEY.
func NewUnsplashSource(log *logger.Logger) (Source, error) {
	accessKey := os.Getenv("UNSPLASH_ACCESS_KEY")
	if accessKey == "" {
		return nil, fmt.Errorf("missing UNSPLASH_ACCESS_KEY")
	}

	baseURL := os.Getenv("UNSPLASH_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.unsplash.com"
	}

	timeoutSec := 15
	if v := os.Getenv("UNSPLASH_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &unsplashSource{
		log:        log.With("service", "UnsplashSource"),
		baseURL:    baseURL,
		accessKey:  accessKey,
		query:      strings.TrimSpace(os.Getenv("UNSPLASH_QUERY")),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type unsplashPhoto struct {
	ID          string `json:"id"`
	Color       string `json:"color"`
	Description string `json:"description"`
	AltDesc     string `json:"alt_description"`
	URLs        struct {
		Regular string `json:"regular"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

func (s *unsplashSource) FetchRandomCandidate(ctx context.Context) (*types.Picture, error) {
	params := url.Values{}
	params.Set("orientation", "landscape")
	params.Set("content_filter", "high")
	if s.query != "" {
		params.Set("query", s.query)
	}
	endpoint := s.baseURL + "/photos/random?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Authorization", "Client-ID "+s.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unsplash http %d: %s", ErrSourceUnavailable, resp.StatusCode, string(raw))
	}

	var photo unsplashPhoto
	if err := json.Unmarshal(raw, &photo); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSourceUnavailable, err)
	}
	if photo.ID == "" || photo.URLs.Regular == "" {
		return nil, fmt.Errorf("%w: unsplash returned incomplete photo", ErrSourceUnavailable)
	}

	description := photo.Description
	if strings.TrimSpace(description) == "" {
		description = photo.AltDesc
	}

	return &types.Picture{
		ID:          photo.ID,
		ImageURL:    photo.URLs.Regular,
		ThumbURL:    photo.URLs.Thumb,
		Description: strings.TrimSpace(description),
		AvgColor:    strings.TrimSpace(photo.Color),
		Attribution: strings.TrimSpace(photo.User.Name),
	}, nil
}
