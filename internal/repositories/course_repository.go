package repositories

import (
	"context"

	"github.com/raccoongang/edx-extended-api/internal/models"
)

// CourseFilters restricts course listings. Orgs is the organization scope;
// an empty scope matches nothing.
type CourseFilters struct {
	Orgs []string
}

// CourseRepository reads the course catalog maintained by the host platform.
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*models.CourseOverview, error)
	List(ctx context.Context, filters CourseFilters) ([]*models.CourseOverview, error)
	GetTitles(ctx context.Context, ids []string) (map[string]string, error)
}
