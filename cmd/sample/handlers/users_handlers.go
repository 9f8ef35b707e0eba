// Package handlers holds the endpoints of the sample server.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bjaus/extcore"
)

// Role is a user's permission level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User is the core domain entity.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// UserPage is a page of users.
type UserPage = Page[User]

type CreateUserBody struct {
	Name  string `json:"name" required:"true" minLength:"2" maxLength:"64" doc:"Display name"`
	Email string `json:"email" required:"true" pattern:"^[^@]+@[^@]+$" doc:"Email address"`
	Role  Role   `json:"role,omitempty" enum:"admin,member" doc:"Defaults to member"`
}

type UserParams struct {
	ID string `path:"id" doc:"User ID"`
}

type ListUsersQuery struct {
	Role   Role `query:"role" doc:"Filter by role"`
	Limit  int  `query:"limit" default:"50" minimum:"1" maximum:"100"`
	Offset int  `query:"offset" default:"0" minimum:"0"`
}

var ListUsers = extcore.NewEndpoint(extcore.EndpointConfig[UserPage, extcore.Void, extcore.Void, ListUsersQuery]{
	Path:     "/users",
	Tags:     []string{"users"},
	Summary:  "List users",
	Response: "A page of users",
	ParamsDescription: map[string]string{
		"limit": "Max results",
	},
	Handler: func(_ context.Context, req *extcore.Request[extcore.Void, extcore.Void, ListUsersQuery], hc *extcore.HandlerContext[UserPage]) (*extcore.HandlerResponse[UserPage], error) {
		users := store.list(req.Query.Role)
		page := UserPage{Total: len(users)}

		users = users[min(req.Query.Offset, len(users)):]
		if req.Query.Limit < len(users) {
			users = users[:req.Query.Limit]
		}
		page.Items = users
		return hc.OK(page), nil
	},
})

var GetUser = extcore.NewEndpoint(extcore.EndpointConfig[User, extcore.Void, UserParams, extcore.Void]{
	Path:     "/users/{id}",
	Tags:     []string{"users"},
	Summary:  "Get a user",
	Response: "The user",
	ParamsDescription: map[string]string{
		"id": "User ID",
	},
	Handler: func(_ context.Context, req *extcore.Request[extcore.Void, UserParams, extcore.Void], hc *extcore.HandlerContext[User]) (*extcore.HandlerResponse[User], error) {
		u, ok := store.get(req.Params.ID)
		if !ok {
			return nil, extcore.NotFound("user " + req.Params.ID + " not found")
		}
		return hc.OK(u), nil
	},
})

var CreateUser = extcore.NewEndpoint(extcore.EndpointConfig[User, CreateUserBody, extcore.Void, extcore.Void]{
	Path:            "/users",
	Method:          http.MethodPost,
	Tags:            []string{"users"},
	Summary:         "Create a user",
	Response:        "The created user",
	BodyDescription: "The user to create",
	Validate: func(req *extcore.Request[CreateUserBody, extcore.Void, extcore.Void]) error {
		if strings.HasSuffix(req.Body.Email, "@example.invalid") {
			ve := &extcore.ValidationErrors{}
			ve.Add("email domain is not accepted")
			return ve
		}
		return nil
	},
	Handler: func(_ context.Context, req *extcore.Request[CreateUserBody, extcore.Void, extcore.Void], hc *extcore.HandlerContext[User]) (*extcore.HandlerResponse[User], error) {
		u := store.create(req.Body)
		hc.Logger.Info("user created", "id", u.ID)
		return hc.SendResponse(extcore.ResponseConfig[User]{
			Status:  http.StatusCreated,
			Headers: map[string]string{"Location": "/users/" + u.ID},
			Body:    u,
		}), nil
	},
})

var DeleteUser = extcore.NewEndpoint(extcore.EndpointConfig[extcore.Void, extcore.Void, extcore.RequestParams, extcore.Void]{
	Path:    "/users/{id}",
	Method:  http.MethodDelete,
	Tags:    []string{"users"},
	Summary: "Delete a user",
	Handler: func(_ context.Context, req *extcore.Request[extcore.Void, extcore.RequestParams, extcore.Void], hc *extcore.HandlerContext[extcore.Void]) (*extcore.HandlerResponse[extcore.Void], error) {
		if !store.delete(req.Params["id"]) {
			return nil, extcore.NotFound()
		}
		return hc.SendResponse(extcore.ResponseConfig[extcore.Void]{Status: http.StatusNoContent}), nil
	},
})
