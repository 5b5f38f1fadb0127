package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"platefinder/models"
)

const maxErrorBody = 64 << 10

// Client talks to the restaurant directory under <baseURL>/restaurants/.
// It performs no retries and no caching; bound calls with the context.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client. A nil httpClient uses a client without a timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListRestaurants fetches the full collection.
func (c *Client) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var out []models.Restaurant
	if err := c.get(ctx, "list restaurants", "/restaurants/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRestaurant fetches one restaurant. A 404 matches ErrNotFound.
func (c *Client) GetRestaurant(ctx context.Context, id int64) (models.Restaurant, error) {
	var out models.Restaurant
	path := "/restaurants/" + strconv.FormatInt(id, 10) + "/"
	if err := c.get(ctx, "get restaurant", path, nil, &out); err != nil {
		return models.Restaurant{}, err
	}
	return out, nil
}

// NearbyRestaurants fetches restaurants within radiusKm of origin.
func (c *Client) NearbyRestaurants(ctx context.Context, origin models.Coordinates, radiusKm float64) ([]models.Restaurant, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(origin.Latitude, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(origin.Longitude, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))

	var out []models.Restaurant
	if err := c.get(ctx, "nearby restaurants", "/restaurants/search/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClassifyImage uploads data as the multipart field "image".
func (c *Client) ClassifyImage(ctx context.Context, filename string, data []byte) (models.Classification, error) {
	const op = "classify image"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", mimetype.Detect(data).String())
	part, err := mw.CreatePart(header)
	if err != nil {
		return models.Classification{}, fmt.Errorf("%s: create part: %w", op, err)
	}
	if _, err := part.Write(data); err != nil {
		return models.Classification{}, fmt.Errorf("%s: write part: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return models.Classification{}, fmt.Errorf("%s: close multipart: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/restaurants/classify-image/", &body)
	if err != nil {
		return models.Classification{}, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.Classification
	if err := c.do(req, op, &out); err != nil {
		return models.Classification{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, v any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, op, v)
}

func (c *Client) do(req *http.Request, op string, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(raw),
			Body:       raw,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
