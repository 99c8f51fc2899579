package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/utils"
	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// NewClient creates an Elasticsearch client with optional basic auth.
func NewClient(addrs []string, username, password string) (*es.Client, error) {
	return es.NewClient(es.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	})
}

// Searcher keeps one index per content kind, named "<prefix>-blogs" and "<prefix>-posts".
type Searcher struct {
	client *es.Client
	prefix string
}

func NewSearcher(client *es.Client, prefix string) *Searcher {
	return &Searcher{client: client, prefix: prefix}
}

var _ portssvc.ContentSearcher = (*Searcher)(nil)

func (s *Searcher) indexName(kind domain.ContentKind) string {
	return fmt.Sprintf("%s-%ss", s.prefix, kind)
}

// document is the indexed projection of a content item.
type document struct {
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Body        string     `json:"body"`
	Tags        []string   `json:"tags"`
	Category    string     `json:"category"`
	AuthorID    string     `json:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

func toDocument(c domain.Content) document {
	return document{
		Title:       c.Title,
		Excerpt:     c.Excerpt,
		Body:        utils.PlainText(c.Body),
		Tags:        c.Tags,
		Category:    c.Category,
		AuthorID:    c.AuthorID,
		PublishedAt: c.PublishedAt,
	}
}

func (s *Searcher) Index(ctx context.Context, c domain.Content) error {
	body, err := json.Marshal(toDocument(c))
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", c.Kind, c.ID, err)
	}
	res, err := esapi.IndexRequest{
		Index:      s.indexName(c.Kind),
		DocumentID: c.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to index %s %s: %w", c.Kind, c.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

func (s *Searcher) Remove(ctx context.Context, kind domain.ContentKind, id string) error {
	res, err := esapi.DeleteRequest{Index: s.indexName(kind), DocumentID: id}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to remove %s %s from index: %w", kind, id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

// searchQuery builds a multi_match query weighted towards titles and tags.
func searchQuery(query string, limit int) map[string]any {
	return map[string]any{
		"size":    limit,
		"_source": false,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^3", "tags^2", "excerpt", "body"},
				"fuzziness": "AUTO",
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *Searcher) Search(ctx context.Context, kind domain.ContentKind, query string, limit int) ([]string, error) {
	body, err := json.Marshal(searchQuery(query, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to encode search: %w", err)
	}
	res, err := esapi.SearchRequest{
		Index: []string{s.indexName(kind)},
		Body:  bytes.NewReader(body),
	}.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", kind, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		// Nothing has been indexed for this kind yet.
		return []string{}, nil
	}
	if res.IsError() {
		return nil, responseError("search", res)
	}
	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]string, error) {
	var parsed searchResponse
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func responseError(op string, res *esapi.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("elasticsearch %s failed: %s: %s", op, res.Status(), bytes.TrimSpace(raw))
}
