package database

import (
	"fmt"
	"strings"

	"primetrade-server/internal/models"
)

// ORDER BY clauses per sort order. id is the tiebreak so pages never overlap.
var orderClauses = map[models.SortOrder]string{
	models.SortCreatedDesc: "created_at DESC, id DESC",
	models.SortCreatedAsc:  "created_at ASC, id ASC",
	models.SortUpdatedDesc: "updated_at DESC, id DESC",
	models.SortUpdatedAsc:  "updated_at ASC, id ASC",
	models.SortTitleAsc:    "lower(title) ASC, id ASC",
	models.SortTitleDesc:   "lower(title) DESC, id DESC",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps q for a substring ILIKE match with wildcards escaped.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// listQuery is a SELECT and a matching COUNT over one owned-resource table.
type listQuery struct {
	selectSQL string
	countSQL  string
	args      []any
	countArgs []any
}

// buildListQuery renders the filtered page query and its count query.
// Both share the same WHERE clause so total always matches the filter.
func buildListQuery(table, columns string, p models.ListParams) listQuery {
	var (
		conditions []string
		args       []any
	)
	argID := 1

	if p.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argID))
		args = append(args, *p.OwnerID)
		argID++
	}
	if p.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, string(*p.Status))
		argID++
	}
	if p.Query != "" {
		conditions = append(conditions,
			fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR COALESCE(description, '') ILIKE $%d ESCAPE '\')`, argID, argID))
		args = append(args, likePattern(p.Query))
		argID++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	order, ok := orderClauses[p.Sort]
	if !ok {
		order = orderClauses[models.SortCreatedDesc]
	}

	countArgs := append([]any(nil), args...)
	selectSQL := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		columns, table, where, order, argID, argID+1)
	args = append(args, p.Limit, p.Skip)

	return listQuery{
		selectSQL: selectSQL,
		countSQL:  fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, where),
		args:      args,
		countArgs: countArgs,
	}
}
