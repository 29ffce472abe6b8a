// Package client is a thin Go client for the medialist API.
package client

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
)

type Client struct {
	http.Client
	Addr  string
	Token string
}

// Author mirrors the author payload returned by registration.
type Author struct {
	ID        int64  `json:"pk"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Bio       string `json:"bio"`
	Token     string `json:"token"`
}

// Registration is the input for Register.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Bio       string `json:"bio"`
	FirstName string `json:"first_name"`
}

// APIError is a non-2xx response decoded from its {"detail": ...} body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

func (c *Client) Ping() (string, error) {
	req, err := http.NewRequest("GET", c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

func (c *Client) postJSON(path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", c.Addr+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Token "+c.Token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(body, &detail)
		return &APIError{StatusCode: resp.StatusCode, Detail: detail.Detail}
	}

	return json.Unmarshal(body, out)
}

// Register creates a new author and remembers the issued token.
func (c *Client) Register(reg Registration) (*Author, error) {
	var a Author
	if err := c.postJSON("/authors/create", reg, &a); err != nil {
		return nil, err
	}
	c.Token = a.Token
	return &a, nil
}

// Authenticate exchanges credentials for the author's token and
// remembers it.
func (c *Client) Authenticate(username, password string) (string, error) {
	in := map[string]string{"username": username, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.postJSON("/authors/authenticate", in, &out); err != nil {
		return "", err
	}
	c.Token = out.Token
	return out.Token, nil
}

// ToggleBookmark flips the bookmark on an article and reports the
// resulting action, "created" or "deleted".
func (c *Client) ToggleBookmark(articleID int64) (string, error) {
	in := map[string]int64{"article_id": articleID}
	var out struct {
		Detail struct {
			Action string `json:"action"`
		} `json:"detail"`
	}
	if err := c.postJSON("/bookmarks/", in, &out); err != nil {
		return "", err
	}
	return out.Detail.Action, nil
}
