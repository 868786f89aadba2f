// Package store is the data access layer. Every store wraps the shared
// *gorm.DB handed in at startup and scopes each query to the caller's context.
package store

import (
	"strings"
	"time"

	"crm-backend/internal/apperr"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// translate turns gorm errors into application errors.
func translate(err error, entity, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(entity + " already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		if op == "delete" {
			return apperr.Conflict(entity + " is still referenced by other records")
		}
		return apperr.Validation("related record constraint violated")
	}
	return apperr.Internal(errors.Wrapf(err, "%s %s", op, strings.ToLower(entity)), "database error")
}

// deleted checks the outcome of a hard delete by primary key.
func deleted(res *gorm.DB, entity string) error {
	if res.Error != nil {
		return translate(res.Error, entity, "delete")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}

// likePattern escapes LIKE metacharacters and wraps term for substring match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

// dayAfter returns midnight of the day after d, for inclusive end-date filters.
func dayAfter(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day+1, 0, 0, 0, 0, d.Location())
}

func prefixPattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.TrimSpace(term)) + "%"
}
