package graph

import (
	"context"
	"fmt"
)

// User is a directory user or the caller's own profile.
type User struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Email returns the user's mail, falling back to the principal name when the
// mail attribute is unset.
func (u User) Email() string {
	if u.Mail != "" {
		return u.Mail
	}
	return u.UserPrincipalName
}

// UserPage is one page of a directory listing. NextLink is the opaque
// continuation URL; empty means the listing is exhausted.
type UserPage struct {
	Value    []User `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

const listUsersPath = "/users?$select=id,displayName,mail,userPrincipalName"

// Me fetches the authenticated caller's profile.
func (c *Client) Me(ctx context.Context, token Token) (User, error) {
	var user User
	if err := c.get(ctx, token, "/me", &user); err != nil {
		return User{}, fmt.Errorf("fetch profile: %w", err)
	}
	return user, nil
}

// ListUsersPage fetches one directory page. An empty link starts the listing
// from the beginning; otherwise link must be a continuation URL from a
// previous page.
func (c *Client) ListUsersPage(ctx context.Context, token Token, link string) (UserPage, error) {
	if link == "" {
		link = listUsersPath
	}
	var page UserPage
	if err := c.get(ctx, token, link, &page); err != nil {
		return UserPage{}, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}
