// Package pocketbase implements the service.Service interface against a
// PocketBase-style record store over its REST API.
package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"gallery/internal/config"
	"gallery/internal/service"
	"gallery/internal/telemetry"
)

const (
	// ImagesCollection holds the image records.
	ImagesCollection = "images"

	// ListsCollection holds the user-curated lists.
	ListsCollection = "image_lists"

	// UsersCollection is the auth collection used by login.
	UsersCollection = "users"

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	requestIDHeader = "X-Request-Id"
)

// Client implements service.Service over HTTP.
type Client struct {
	http    *http.Client
	apiBase string
	log     *zap.Logger
}

// New creates a client for cfg.Server. The stored session, if any, is sent
// as a bearer token on every request.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	tok, err := cfg.LoadSession()
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Transport: telemetry.Transport(http.DefaultTransport)}
	if tok != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	}
	return NewWithHTTPClient(cfg.Server, httpClient, cfg.Logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(server string, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	base, err := apiBase(server)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{http: httpClient, apiBase: base, log: log.Named("store")}, nil
}

func apiBase(server string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(server))
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", server, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: want http(s)://host[:port]", server)
	}
	u.Path = path.Join(u.Path, "api")
	u.RawQuery, u.Fragment = "", ""
	return u.String(), nil
}

// wire types

type recordPage struct {
	Page       int              `json:"page"`
	PerPage    int              `json:"perPage"`
	TotalItems int              `json:"totalItems"`
	Items      *json.RawMessage `json:"items"`
}

type imageRecord struct {
	ID           string          `json:"id"`
	CollectionID string          `json:"collectionId"`
	Title        string          `json:"title"`
	Tags         json.RawMessage `json:"tags"`
	Image        string          `json:"image"`
	Created      string          `json:"created"`
}

type listRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Updated     string   `json:"updated"`
}

// ListImages implements service.Service.
func (c *Client) ListImages(ctx context.Context, query string) ([]service.Image, error) {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("perPage", strconv.Itoa(service.PageSize))
	q.Set("sort", "-created")
	if f := SearchFilter(query); f != "" {
		q.Set("filter", f)
	}

	var recs []imageRecord
	if err := c.getPage(ctx, ImagesCollection, q, &recs); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	out := make([]service.Image, 0, len(recs))
	for _, r := range recs {
		img, err := r.toImage()
		if err != nil {
			return nil, fmt.Errorf("list images: record %s: %w", r.ID, err)
		}
		out = append(out, img)
	}
	return out, nil
}

// GetImage implements service.Service.
func (c *Client) GetImage(ctx context.Context, imageID string) (service.Image, error) {
	var rec imageRecord
	if err := c.doJSON(ctx, http.MethodGet, recordsPath(ImagesCollection, imageID), nil, &rec); err != nil {
		return service.Image{}, fmt.Errorf("get image: %w", err)
	}
	img, err := rec.toImage()
	if err != nil {
		return service.Image{}, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

// UploadImage implements service.Service.
func (c *Client) UploadImage(ctx context.Context, img service.NewImage) (service.Image, error) {
	tags := img.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return service.Image{}, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", img.FileName)
	if err != nil {
		return service.Image{}, err
	}
	if _, err := fw.Write(img.Data); err != nil {
		return service.Image{}, err
	}
	if err := mw.WriteField("title", img.Title); err != nil {
		return service.Image{}, err
	}
	if err := mw.WriteField("tags", string(tagsJSON)); err != nil {
		return service.Image{}, err
	}
	if err := mw.Close(); err != nil {
		return service.Image{}, err
	}

	var rec imageRecord
	err = c.do(ctx, http.MethodPost, recordsPath(ImagesCollection, ""), nil, &body, mw.FormDataContentType(), &rec)
	if err != nil {
		return service.Image{}, fmt.Errorf("upload image: %w", err)
	}
	out, err := rec.toImage()
	if err != nil {
		return service.Image{}, fmt.Errorf("upload image: %w", err)
	}
	return out, nil
}

// ListLists implements service.Service.
func (c *Client) ListLists(ctx context.Context) ([]service.List, error) {
	q := url.Values{}
	q.Set("perPage", "500")
	q.Set("skipTotal", "1")

	var recs []listRecord
	if err := c.getPage(ctx, ListsCollection, q, &recs); err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	out := make([]service.List, len(recs))
	for i, r := range recs {
		out[i] = r.toList()
	}
	return out, nil
}

// CreateList implements service.Service.
func (c *Client) CreateList(ctx context.Context, fields service.ListFields) (service.List, error) {
	var rec listRecord
	payload := map[string]any{"name": fields.Name, "description": fields.Description, "images": []string{}}
	if err := c.doJSON(ctx, http.MethodPost, recordsPath(ListsCollection, ""), payload, &rec); err != nil {
		return service.List{}, fmt.Errorf("create list: %w", err)
	}
	return rec.toList(), nil
}

// UpdateList implements service.Service.
func (c *Client) UpdateList(ctx context.Context, listID string, fields service.ListFields) (service.List, error) {
	var rec listRecord
	payload := map[string]any{"name": fields.Name, "description": fields.Description}
	if err := c.doJSON(ctx, http.MethodPatch, recordsPath(ListsCollection, listID), payload, &rec); err != nil {
		return service.List{}, fmt.Errorf("update list: %w", err)
	}
	return rec.toList(), nil
}

// DeleteList implements service.Service.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, recordsPath(ListsCollection, listID), nil, nil); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// AddImageToList implements service.Service.
func (c *Client) AddImageToList(ctx context.Context, listID, imageID string) error {
	return c.updateMembers(ctx, listID, func(ids []string) []string {
		for _, id := range ids {
			if id == imageID {
				return ids
			}
		}
		return append(ids, imageID)
	})
}

// RemoveImageFromList implements service.Service.
func (c *Client) RemoveImageFromList(ctx context.Context, listID, imageID string) error {
	return c.updateMembers(ctx, listID, func(ids []string) []string {
		out := ids[:0]
		for _, id := range ids {
			if id != imageID {
				out = append(out, id)
			}
		}
		return out
	})
}

// updateMembers reads the list, applies fn and writes the whole member
// array back. Concurrent writers on other clients may lose updates.
func (c *Client) updateMembers(ctx context.Context, listID string, fn func([]string) []string) error {
	var rec listRecord
	p := recordsPath(ListsCollection, listID)
	if err := c.doJSON(ctx, http.MethodGet, p, nil, &rec); err != nil {
		return fmt.Errorf("read list: %w", err)
	}
	ids := fn(append([]string(nil), rec.Images...))
	if ids == nil {
		ids = []string{}
	}
	if err := c.doJSON(ctx, http.MethodPatch, p, map[string]any{"images": ids}, nil); err != nil {
		return fmt.Errorf("update list members: %w", err)
	}
	return nil
}

// FileURL implements service.Service.
func (c *Client) FileURL(img service.Image) string {
	return c.apiBase + "/files/" + url.PathEscape(img.CollectionID) + "/" +
		url.PathEscape(img.ID) + "/" + url.PathEscape(img.File)
}

// AuthWithPassword exchanges user credentials for a session token.
func AuthWithPassword(ctx context.Context, server string, httpClient *http.Client, identity, password string) (*oauth2.Token, error) {
	c, err := NewWithHTTPClient(server, httpClient, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Token string `json:"token"`
	}
	payload := map[string]string{"identity": identity, "password": password}
	p := "/collections/" + UsersCollection + "/auth-with-password"
	if err := c.doJSON(ctx, http.MethodPost, p, payload, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: %w: no token", service.ErrMalformedResponse)
	}
	return &oauth2.Token{AccessToken: resp.Token, TokenType: "Bearer"}, nil
}

// SearchFilter builds the store filter for a free-text query.
func SearchFilter(query string) string {
	if query == "" {
		return ""
	}
	q := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(query)
	return fmt.Sprintf(`title ~ "%s" || tags ~ "%s"`, q, q)
}

func recordsPath(collection, id string) string {
	p := "/collections/" + url.PathEscape(collection) + "/records"
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (c *Client) getPage(ctx context.Context, collection string, q url.Values, items any) error {
	var page recordPage
	if err := c.do(ctx, http.MethodGet, recordsPath(collection, ""), q, nil, "", &page); err != nil {
		return err
	}
	if page.Items == nil {
		return fmt.Errorf("%w: missing items", service.ErrMalformedResponse)
	}
	if err := json.Unmarshal(*page.Items, items); err != nil {
		return fmt.Errorf("%w: %v", service.ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, p string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, p, nil, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, p string, q url.Values, body io.Reader, contentType string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	u := c.apiBase + p
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", p),
			zap.String("request_id", reqID),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", p),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if err := checkResponse(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return err
		}
		return fmt.Errorf("%w: %v", service.ErrMalformedResponse, err)
	}
	return nil
}

// checkResponse turns a non-2xx response into a *googleapi.Error carrying
// the store's own message.
func checkResponse(resp *http.Response) error {
	err := googleapi.CheckResponse(resp)
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	var body struct {
		Message string `json:"message"`
	}
	if apiErr.Message == "" && json.Unmarshal([]byte(apiErr.Body), &body) == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	if apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %w", service.ErrNotFound, apiErr)
	}
	return apiErr
}

func (r imageRecord) toImage() (service.Image, error) {
	tags, err := decodeTags(r.Tags)
	if err != nil {
		return service.Image{}, err
	}
	return service.Image{
		ID:           r.ID,
		Title:        r.Title,
		Tags:         tags,
		File:         r.Image,
		CollectionID: r.CollectionID,
		Created:      parseTime(r.Created),
	}, nil
}

func (r listRecord) toList() service.List {
	return service.List{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ImageIDs:    r.Images,
		Updated:     parseTime(r.Updated),
	}
}

// decodeTags accepts a JSON array of strings or a string holding one.
func decodeTags(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: tags: %v", service.ErrMalformedResponse, err)
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		raw = json.RawMessage(s)
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("%w: tags: %v", service.ErrMalformedResponse, err)
	}
	return tags, nil
}

const storeTimeLayout = "2006-01-02 15:04:05.999Z07:00"

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{storeTimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
