package service

import (
	"strings"
	"unicode/utf8"

	"primetrade-server/internal/models"
)

// normalizeListParams validates paging and sort values and fills defaults.
// OwnerID is always overwritten by the caller from the policy.
func normalizeListParams(p models.ListParams, allowStatus bool) (models.ListParams, error) {
	if p.Skip < 0 {
		return p, models.NewValidationError("skip", "must be greater than or equal to 0")
	}
	if p.Limit == 0 {
		p.Limit = models.DefaultPageLimit
	}
	if p.Limit < 1 || p.Limit > models.MaxPageLimit {
		return p, models.NewValidationError("limit", "must be between 1 and 100")
	}
	sort, ok := models.ParseSortOrder(string(p.Sort))
	if !ok {
		return p, models.NewValidationError("sort", "unknown sort order")
	}
	p.Sort = sort
	p.Query = strings.TrimSpace(p.Query)
	if p.Status != nil {
		if !allowStatus {
			return p, models.NewValidationError("status", "filter is not supported for this resource")
		}
		if !p.Status.IsValid() {
			return p, models.NewValidationError("status", "must be one of open, in_progress, done")
		}
	}
	return p, nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", models.NewValidationError("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return "", models.NewValidationError("title", "must be at most 255 characters")
	}
	return title, nil
}
