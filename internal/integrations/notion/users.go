package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// User is a Notion user (person or bot)
type User struct {
	Object    string  `json:"object,omitempty"`
	ID        string  `json:"id"`
	Type      string  `json:"type,omitempty"` // "person" or "bot"
	Name      string  `json:"name,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Person    *Person `json:"person,omitempty"`
}

type Person struct {
	Email string `json:"email"`
}

// Email returns the person email, empty for bots
func (u User) Email() string {
	if u.Person == nil {
		return ""
	}
	return u.Person.Email
}

// UserList is one page of GET /users
type UserList struct {
	Object     string `json:"object"`
	Results    []User `json:"results"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// ListUsers returns one page of workspace users starting at startCursor
func (c *Client) ListUsers(ctx context.Context, startCursor string) (*UserList, error) {
	q := url.Values{}
	q.Set("page_size", strconv.Itoa(defaultPage))
	if startCursor != "" {
		q.Set("start_cursor", startCursor)
	}

	data, err := c.request(ctx, "list_users", "GET", "/users?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result UserList
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}

	return &result, nil
}
