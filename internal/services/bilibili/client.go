package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"favsort/internal/logging"
)

const (
	folderListPath   = "/x/v3/fav/folder/created/list-all"
	folderItemsPath  = "/x/v3/fav/resource/list"
	folderCreatePath = "/x/v3/fav/folder/add"
	resourceDealPath = "/x/v3/fav/resource/deal"

	// resourceTypeVideo is the resource type discriminator for video items
	// in the favorites deal API.
	resourceTypeVideo = 2

	defaultPageSize     = 20
	defaultRequestDelay = 500 * time.Millisecond

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Folder is a read-only snapshot of one favorites folder. Counts may go
// stale immediately after fetch; consumers must tolerate disagreement with
// the live folder.
type Folder struct {
	ID        int64
	Title     string
	ItemCount int
}

// Item is one favorited video. ID is the stable primary key used for
// mutation calls; ExternalID is the display-only bvid.
type Item struct {
	ID          int64
	ExternalID  string
	Title       string
	Description string
	OwnerName   string
}

// ClientOption customizes Client construction.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for catalog calls.
func WithHTTPClient(client HTTPDoer) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the catalog API base URL (used in tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithPageSize overrides the pagination page size.
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithRequestDelay overrides the politeness delay between paginated fetches
// and is shared with callers issuing sequential mutations.
func WithRequestDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		if delay >= 0 {
			c.requestDelay = delay
		}
	}
}

// WithSleeper overrides how politeness delays are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) ClientOption {
	return func(c *Client) {
		if sleeper != nil {
			c.sleep = sleeper
		}
	}
}

// Client performs authenticated favorites-catalog reads and mutations.
type Client struct {
	baseURL      string
	cred         Credential
	httpClient   HTTPDoer
	logger       *slog.Logger
	pageSize     int
	requestDelay time.Duration
	sleep        func(context.Context, time.Duration) error
}

// NewClient constructs a catalog client for the supplied credential. An
// incomplete credential is a programming error and fails immediately: every
// mutating call requires the CSRF token.
func NewClient(cred Credential, logger *slog.Logger, opts ...ClientOption) (*Client, error) {
	if cred.SessData == "" || cred.CSRF == "" || cred.UserID == "" {
		return nil, errors.New("bilibili client: credential must carry SESSDATA, bili_jct, and DedeUserID")
	}
	client := &Client{
		baseURL:      "https://api.bilibili.com",
		cred:         cred,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logging.NewComponentLogger(logger, "catalog"),
		pageSize:     defaultPageSize,
		requestDelay: defaultRequestDelay,
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// RequestDelay reports the politeness delay the client was configured with,
// so sequential callers can pace their own mutation loops identically.
func (c *Client) RequestDelay() time.Duration { return c.requestDelay }

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ListFolders fetches the user's favorites folders in server order.
func (c *Client) ListFolders(ctx context.Context) ([]Folder, error) {
	query := url.Values{"up_mid": {c.cred.UserID}}
	env, err := c.doGet(ctx, "list folders", folderListPath, query)
	if err != nil {
		return nil, err
	}

	var data struct {
		List []struct {
			ID         int64  `json:"id"`
			Title      string `json:"title"`
			MediaCount int    `json:"media_count"`
		} `json:"list"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, &RemoteError{Op: "list folders", Message: fmt.Sprintf("malformed payload: %v", err)}
		}
	}

	folders := make([]Folder, 0, len(data.List))
	for _, entry := range data.List {
		folders = append(folders, Folder{ID: entry.ID, Title: entry.Title, ItemCount: entry.MediaCount})
	}
	c.logger.Debug("folders listed", logging.Int("count", len(folders)))
	return folders, nil
}

// ListItems fetches every item in the folder, page by page, in server order.
// A fixed politeness delay separates page requests. Any page failure fails
// the whole call: downstream classification assumes a complete snapshot.
func (c *Client) ListItems(ctx context.Context, folderID int64) ([]Item, error) {
	var items []Item

	for page := 1; ; page++ {
		query := url.Values{
			"media_id": {strconv.FormatInt(folderID, 10)},
			"pn":       {strconv.Itoa(page)},
			"ps":       {strconv.Itoa(c.pageSize)},
		}
		env, err := c.doGet(ctx, "list items", folderItemsPath, query)
		if err != nil {
			return nil, err
		}

		var data struct {
			Medias []struct {
				ID    int64  `json:"id"`
				BVID  string `json:"bvid"`
				Title string `json:"title"`
				Intro string `json:"intro"`
				Upper struct {
					Name string `json:"name"`
				} `json:"upper"`
			} `json:"medias"`
			HasMore bool `json:"has_more"`
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return nil, &RemoteError{Op: "list items", Message: fmt.Sprintf("malformed payload: %v", err)}
			}
		}

		if len(data.Medias) == 0 {
			break
		}
		for _, media := range data.Medias {
			items = append(items, Item{
				ID:          media.ID,
				ExternalID:  media.BVID,
				Title:       media.Title,
				Description: media.Intro,
				OwnerName:   media.Upper.Name,
			})
		}
		if !data.HasMore {
			break
		}

		if err := c.sleep(ctx, c.requestDelay); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("items listed", logging.Int64("folder_id", folderID), logging.Int("count", len(items)))
	return items, nil
}

// CreateFolder creates a new favorites folder and returns its id. Business
// failures (duplicate title, quota) report ok=false without an error; only
// transport failures return one.
func (c *Client) CreateFolder(ctx context.Context, title string) (int64, bool, error) {
	form := url.Values{
		"title": {title},
		"csrf":  {c.cred.CSRF},
	}
	env, err := c.doPostForm(ctx, "create folder", folderCreatePath, form)
	if err != nil {
		return 0, false, err
	}
	if env.Code != 0 {
		c.logger.Warn("create folder rejected",
			logging.String("title", title),
			logging.Int("code", env.Code),
			logging.String("message", env.Message))
		return 0, false, nil
	}

	var data struct {
		ID int64 `json:"id"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return 0, false, &RemoteError{Op: "create folder", Message: fmt.Sprintf("malformed payload: %v", err)}
		}
	}
	return data.ID, true, nil
}

// MoveItem moves one item between folders in a single call that adds to the
// destination and removes from the source atomically on the remote side.
// The boolean reports business success; errors are transport-level only.
func (c *Client) MoveItem(ctx context.Context, itemID, sourceFolderID, destFolderID int64) (bool, error) {
	form := url.Values{
		"rid":           {strconv.FormatInt(itemID, 10)},
		"type":          {strconv.Itoa(resourceTypeVideo)},
		"add_media_ids": {strconv.FormatInt(destFolderID, 10)},
		"del_media_ids": {strconv.FormatInt(sourceFolderID, 10)},
		"csrf":          {c.cred.CSRF},
	}
	env, err := c.doPostForm(ctx, "move item", resourceDealPath, form)
	if err != nil {
		return false, err
	}
	if env.Code != 0 {
		c.logger.Warn("move rejected",
			logging.Int64("item_id", itemID),
			logging.Int("code", env.Code),
			logging.String("message", env.Message))
		return false, nil
	}
	return true, nil
}

// doGet performs an authenticated GET and fails on both transport errors and
// non-zero application envelope codes.
func (c *Client) doGet(ctx context.Context, op, path string, query url.Values) (envelope, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: build request: %w", op, err)
	}

	env, err := c.send(op, req)
	if err != nil {
		return envelope{}, err
	}
	if env.Code != 0 {
		return envelope{}, &RemoteError{Op: op, Code: env.Code, Message: env.Message}
	}
	return env, nil
}

// doPostForm performs an authenticated form POST. Non-zero envelope codes are
// returned to the caller: mutations treat them as business outcomes.
func (c *Client) doPostForm(ctx context.Context, op, path string, form url.Values) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return envelope{}, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(op, req)
}

func (c *Client) send(op string, req *http.Request) (envelope, error) {
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Cookie", c.cred.cookieHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return envelope{}, &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, &RemoteError{Op: op, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return env, nil
}
