package store

import (
	"errors"
	"testing"
	"time"

	"crm-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil, entityCustomer, "find"))

	err := translate(gorm.ErrRecordNotFound, entityCustomer, "find")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, "Customer not found", err.Error())

	assert.True(t, apperr.Is(translate(gorm.ErrDuplicatedKey, entityUser, "create"), apperr.KindConflict))

	err = translate(gorm.ErrForeignKeyViolated, entityCard, "create")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "related record constraint violated", err.Error())

	cause := errors.New("connection reset")
	err = translate(cause, entityCamp, "list")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestTranslateForeignKeyOnDelete(t *testing.T) {
	err := translate(gorm.ErrForeignKeyViolated, entityCustomer, "delete")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, "Customer is still referenced by other records", err.Error())
	assert.NotContains(t, err.Error(), "does not exist")

	err = translate(gorm.ErrForeignKeyViolated, entityCustomer, "update")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.NotContains(t, err.Error(), "does not exist")
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, "%ravi%", likePattern("  ravi "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	assert.Equal(t, `98\%%`, prefixPattern("98%"))
}

func TestDayAfter(t *testing.T) {
	d := time.Date(2024, 12, 31, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), dayAfter(d))
}

func TestServiceCountBuckets(t *testing.T) {
	for _, b := range []string{"0", "1", "2-5", "6-10", "10+"} {
		assert.Contains(t, ServiceCountBuckets, b)
	}
	assert.NotContains(t, ServiceCountBuckets, "11")
}
