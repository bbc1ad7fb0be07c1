package repositories

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/raccoongang/edx-extended-api/internal/models"
)

// UserRef addresses a single user either by numeric id or by username.
type UserRef struct {
	ID       uint
	Username string
}

// ByID returns a reference by numeric id.
func ByID(id uint) UserRef { return UserRef{ID: id} }

// ByUsername returns a reference by username.
func ByUsername(username string) UserRef { return UserRef{Username: username} }

// ParseUserRef resolves a path identifier: an all-digit segment addresses the
// numeric id, anything else the username.
func ParseUserRef(identifier string) UserRef {
	if id, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		return ByID(uint(id))
	}
	return ByUsername(identifier)
}

// UserFilter is the resolved predicate set for user list/bulk operations.
// At most one of IDs/Usernames/Supervisors is populated; Orgs is the
// organization scope applied on top of the predicate.
type UserFilter struct {
	IDs         []uint
	Usernames   []string
	Supervisors []string
	Orgs        []string
}

// Empty reports whether no explicit predicate was resolved. The org scope
// alone does not make a filter non-empty.
func (f UserFilter) Empty() bool {
	return len(f.IDs) == 0 && len(f.Usernames) == 0 && len(f.Supervisors) == 0
}

// ResolveUserFilter derives exactly one predicate from raw query parameters,
// by priority: user_id list (non-numeric entries silently dropped), then
// username list, then, when the operation supports it, supervisor list.
func ResolveUserFilter(params url.Values, withSupervisor bool) UserFilter {
	var filter UserFilter

	for _, raw := range strings.Split(params.Get("user_id"), ",") {
		raw = strings.TrimSpace(raw)
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.IDs = append(filter.IDs, uint(id))
		}
	}
	if len(filter.IDs) > 0 {
		return filter
	}

	for _, raw := range strings.Split(params.Get("username"), ",") {
		if name := strings.TrimSpace(raw); name != "" {
			filter.Usernames = append(filter.Usernames, name)
		}
	}
	if len(filter.Usernames) > 0 {
		return filter
	}

	if withSupervisor {
		for _, raw := range strings.Split(params.Get("supervisor"), ",") {
			if name := strings.TrimSpace(raw); name != "" {
				filter.Supervisors = append(filter.Supervisors, name)
			}
		}
	}
	return filter
}

// UserRepository persists directory records (User plus UserProfile).
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	GetByRef(ctx context.Context, ref UserRef) (*models.User, error)

	// List returns users matching the filter with profiles preloaded; when
	// filtering by an explicit id or username list the result order follows
	// the list order.
	List(ctx context.Context, filter UserFilter) ([]*models.User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// DeactivateAll flips is_active to false for every user matching the
	// filter in a single set-based update, returning the number of rows
	// touched.
	DeactivateAll(ctx context.Context, filter UserFilter) (int64, error)
}
