package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Call records one Fetch.
type Call struct {
	Query  string
	Params map[string]any
}

// Client is an in-memory cms.Client. Results are keyed by query, or by
// query plus the "slug" parameter when registered with SetResultFor.
type Client struct {
	mutex     sync.Mutex
	results   map[string]any
	FetchErr  error
	CreateErr error
	Calls     []Call
	Created   []json.RawMessage
	nextID    int
}

func NewClient() *Client {
	return &Client{results: make(map[string]any)}
}

// SetResult registers the result returned for query.
func (m *Client) SetResult(query string, result any) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.results[query] = result
}

// SetResultFor registers the result returned for query when params["slug"] == slug.
func (m *Client) SetResultFor(query, slug string, result any) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.results[query+"\x00"+slug] = result
}

func (m *Client) Fetch(ctx context.Context, query string, params map[string]any, out any) error {
	m.mutex.Lock()
	m.Calls = append(m.Calls, Call{Query: query, Params: params})
	err := m.FetchErr
	result, ok := m.results[query]
	if slug, isString := params["slug"].(string); isString {
		result, ok = m.results[query+"\x00"+slug]
	}
	m.mutex.Unlock()

	if err != nil {
		return err
	}
	if !ok || result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (m *Client) Create(ctx context.Context, doc any) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	m.Created = append(m.Created, data)
	m.nextID++
	return fmt.Sprintf("doc-%d", m.nextID), nil
}

// FetchCount returns how many queries have been issued.
func (m *Client) FetchCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.Calls)
}

// CreatedCount returns how many documents were created.
func (m *Client) CreatedCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.Created)
}
