package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"favsort/internal/logging"
)

var testCredential = Credential{SessData: "sess", CSRF: "csrf-token", UserID: "42"}

func newTestClient(t *testing.T, baseURL string, opts ...ClientOption) *Client {
	t.Helper()
	merged := append([]ClientOption{
		WithBaseURL(baseURL),
		WithSleeper(noSleep),
	}, opts...)
	client, err := NewClient(testCredential, logging.NewNop(), merged...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRejectsIncompleteCredential(t *testing.T) {
	if _, err := NewClient(Credential{SessData: "sess", UserID: "42"}, logging.NewNop()); err == nil {
		t.Fatal("expected constructor to fail without a CSRF token")
	}
}

func TestListFolders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != folderListPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if mid := r.URL.Query().Get("up_mid"); mid != "42" {
			t.Fatalf("up_mid = %q, want 42", mid)
		}
		payload := map[string]any{
			"code": 0,
			"data": map[string]any{
				"list": []map[string]any{
					{"id": 11, "title": "默认收藏夹", "media_count": 120},
					{"id": 12, "title": "Music/Live", "media_count": 7},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	folders, err := newTestClient(t, server.URL).ListFolders(context.Background())
	if err != nil {
		t.Fatalf("list folders: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("folders = %d, want 2", len(folders))
	}
	if folders[0].ID != 11 || folders[0].Title != "默认收藏夹" || folders[0].ItemCount != 120 {
		t.Fatalf("unexpected first folder %+v", folders[0])
	}
	if folders[1].Title != "Music/Live" {
		t.Fatalf("server order not preserved: %+v", folders)
	}
}

func TestListFoldersApplicationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"code": -101, "message": "account not logged in"})
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).ListFolders(context.Background())
	remoteErr, ok := err.(*RemoteError)
	if !ok {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.Code != -101 || remoteErr.Message != "account not logged in" {
		t.Fatalf("unexpected remote error %+v", remoteErr)
	}
}

func TestListItemsPaginates(t *testing.T) {
	pageSizes := []int{20, 20, 7}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != folderItemsPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		page, err := strconv.Atoi(r.URL.Query().Get("pn"))
		if err != nil || page < 1 || page > len(pageSizes) {
			t.Fatalf("unexpected page %q", r.URL.Query().Get("pn"))
		}
		medias := make([]map[string]any, 0, pageSizes[page-1])
		for i := 0; i < pageSizes[page-1]; i++ {
			id := (page-1)*20 + i + 1
			medias = append(medias, map[string]any{
				"id":    id,
				"bvid":  fmt.Sprintf("BV%04d", id),
				"title": fmt.Sprintf("video %d", id),
				"intro": "",
				"upper": map[string]any{"name": "uploader"},
			})
		}
		payload := map[string]any{
			"code": 0,
			"data": map[string]any{"medias": medias, "has_more": page < len(pageSizes)},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	delays := 0
	client := newTestClient(t, server.URL, WithSleeper(func(ctx context.Context, _ time.Duration) error {
		delays++
		return ctx.Err()
	}))

	items, err := client.ListItems(context.Background(), 11)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 47 {
		t.Fatalf("items = %d, want 47", len(items))
	}
	if items[0].ID != 1 || items[46].ID != 47 {
		t.Fatalf("page order not preserved: first=%d last=%d", items[0].ID, items[46].ID)
	}
	if items[0].ExternalID != "BV0001" {
		t.Fatalf("external id not mapped: %+v", items[0])
	}
	if delays != 2 {
		t.Fatalf("inter-page delays = %d, want 2", delays)
	}
}

func TestListItemsPageFailureFailsWholeCall(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		medias := []map[string]any{{"id": requests, "bvid": "BV1", "title": "v", "upper": map[string]any{"name": "u"}}}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"medias": medias, "has_more": true},
		})
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL).ListItems(context.Background(), 11); err == nil {
		t.Fatal("expected page failure to fail the whole call")
	}
}

func TestMoveItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != resourceDealPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("csrf") != "csrf-token" {
			t.Fatalf("missing csrf, form=%v", r.PostForm)
		}
		if r.PostForm.Get("rid") != "99" || r.PostForm.Get("type") != "2" {
			t.Fatalf("unexpected resource params: %v", r.PostForm)
		}
		if r.PostForm.Get("add_media_ids") != "12" || r.PostForm.Get("del_media_ids") != "11" {
			t.Fatalf("unexpected folder params: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0})
	}))
	defer server.Close()

	moved, err := newTestClient(t, server.URL).MoveItem(context.Background(), 99, 11, 12)
	if err != nil {
		t.Fatalf("move item: %v", err)
	}
	if !moved {
		t.Fatal("expected move to report success")
	}
}

func TestMoveItemBusinessFailureIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 11201, "message": "duplicate resource"})
	}))
	defer server.Close()

	moved, err := newTestClient(t, server.URL).MoveItem(context.Background(), 99, 11, 12)
	if err != nil {
		t.Fatalf("business failure should not raise: %v", err)
	}
	if moved {
		t.Fatal("expected move to report failure")
	}
}

func TestCreateFolder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != folderCreatePath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("title") != "Music/Live" || r.PostForm.Get("csrf") != "csrf-token" {
			t.Fatalf("unexpected form: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "data": map[string]any{"id": 77}})
	}))
	defer server.Close()

	id, ok, err := newTestClient(t, server.URL).CreateFolder(context.Background(), "Music/Live")
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	if !ok || id != 77 {
		t.Fatalf("create folder = (%d, %v), want (77, true)", id, ok)
	}
}

func TestCreateFolderBusinessFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 11202, "message": "folder exists"})
	}))
	defer server.Close()

	_, ok, err := newTestClient(t, server.URL).CreateFolder(context.Background(), "dup")
	if err != nil {
		t.Fatalf("business failure should not raise: %v", err)
	}
	if ok {
		t.Fatal("expected create to report failure")
	}
}
