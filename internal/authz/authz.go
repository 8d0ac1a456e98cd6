// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package authz holds the single access policy used by every mutating
// route. Checks always run in the order authentication, role, ownership
// and stop at the first failure.
package authz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pressroom/internal/apperr"
	"pressroom/internal/models"
)

// Resource is anything with owner fields the policy can resolve.
type Resource interface {
	OwnerOf(field string) (uuid.UUID, bool)
}

// Rule declares who may perform an action. OwnerField, when set, names the
// resource field that must equal the acting user for non-admins.
type Rule struct {
	Action     string
	Roles      []models.Role
	OwnerField string
}

// Allows reports whether role is on the rule's allow-list.
func (r Rule) Allows(role models.Role) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	staff    = []models.Role{models.RoleAdmin, models.RoleEditor}
	writers  = []models.Role{models.RoleAdmin, models.RoleEditor, models.RoleAuthor}
	everyone = models.AllRoles
)

// Rules for every protected action.
var (
	CategoryWrite = Rule{Action: "category.write", Roles: staff}
	PostCreate    = Rule{Action: "post.create", Roles: writers}
	PostModify    = Rule{Action: "post.modify", Roles: writers, OwnerField: "author"}
	MediaUpload   = Rule{Action: "media.upload", Roles: writers}
	MediaRead     = Rule{Action: "media.read", Roles: everyone}
	MediaModify   = Rule{Action: "media.modify", Roles: everyone, OwnerField: "uploadedBy"}
	MediaStats    = Rule{Action: "media.stats", Roles: staff}
	DashboardView = Rule{Action: "dashboard.view", Roles: staff}
	ContentStats  = Rule{Action: "dashboard.content", Roles: everyone}
	UserAdmin     = Rule{Action: "user.admin", Roles: []models.Role{models.RoleAdmin}}
)

// Decision is the outcome of Authorize. A denial carries the failing gate.
type Decision struct {
	Allowed bool
	Reason  apperr.Kind
	Message string
}

var allow = Decision{Allowed: true}

func deny(kind apperr.Kind, msg string) Decision {
	return Decision{Reason: kind, Message: msg}
}

// Err converts a denial into a typed error; it returns nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &apperr.Error{Kind: d.Reason, Message: d.Message}
}

// Authorize evaluates rule for user against an optional resource. A nil
// resource runs only the authentication and role gates, which is how
// route-level checks happen before anything is loaded.
func Authorize(user *models.User, rule Rule, resource Resource) Decision {
	if user == nil || !user.IsActive {
		return deny(apperr.KindUnauthenticated, "authentication required")
	}

	if !rule.Allows(user.Role) {
		return deny(apperr.KindInsufficientRole,
			fmt.Sprintf("role %q may not perform %s (requires one of: %s)", user.Role, rule.Action, roleList(rule.Roles)))
	}

	if rule.OwnerField == "" || resource == nil || user.IsAdmin() {
		return allow
	}

	owner, ok := resource.OwnerOf(rule.OwnerField)
	if !ok || owner != user.ID {
		return deny(apperr.KindNotOwner, "you can only modify your own "+resourceNoun(rule.OwnerField))
	}
	return allow
}

func roleList(roles []models.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func resourceNoun(ownerField string) string {
	switch ownerField {
	case "author":
		return "posts"
	case "uploadedBy":
		return "media"
	}
	return "resources"
}
