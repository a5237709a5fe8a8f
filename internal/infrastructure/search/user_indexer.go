package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/users-service/internal/domain/event"
)

// UserIndexer writes created users into the users search index.
type UserIndexer struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndexer(es *elasticsearch.Client, index string) *UserIndexer {
	return &UserIndexer{es: es, index: index}
}

type userDocument struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func document(e event.UserCreated) userDocument {
	return userDocument{
		ID:        e.UserID,
		Username:  e.Username,
		Email:     e.Email,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// IndexUser upserts the user document keyed by user id, so redelivered
// events overwrite instead of duplicating.
func (x *UserIndexer) IndexUser(ctx context.Context, e event.UserCreated) error {
	b, err := json.Marshal(document(e))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: e.UserID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es index %s: %w", e.UserID, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", e.UserID, res.Status())
	}
	return nil
}

const usersMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "username":   {"type": "keyword", "fields": {"text": {"type": "text"}}},
      "email":      {"type": "keyword"},
      "created_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the users index with its mapping when it is missing.
func (x *UserIndexer) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es index exists %s: %w", x.index, err)
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}
	res, err := esapi.IndicesCreateRequest{Index: x.index, Body: strings.NewReader(usersMapping)}.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es create index %s: %w", x.index, err)
	}
	defer func() { _ = res.Body.Close() }()
	// Another worker may have created it first.
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("es create index %s: %s", x.index, res.Status())
	}
	return nil
}
