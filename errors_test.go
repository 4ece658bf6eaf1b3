package rowmap_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap"
)

func TestSchemaConfigError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := rowmap.NewSchemaConfigError("User", "field %q declared twice", "Name")
		assert.Equal(t, `rowmap: schema User: field "Name" declared twice`, err.Error())
	})

	t.Run("IsSchemaConfigError", func(t *testing.T) {
		err := rowmap.NewSchemaConfigError("User", "no fields")
		assert.True(t, errors.Is(err, rowmap.ErrSchemaConfig))
		assert.True(t, rowmap.IsSchemaConfigError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, rowmap.IsSchemaConfigError(errors.New("other error")))
		assert.False(t, rowmap.IsSchemaConfigError(nil))
	})
}

func TestMissingPrimaryKeyError(t *testing.T) {
	t.Run("Unset", func(t *testing.T) {
		err := rowmap.NewMissingPrimaryKeyError("User", "ID", nil)
		assert.Equal(t, `rowmap: User: primary key "ID" is not set`, err.Error())
	})

	t.Run("NotPositive", func(t *testing.T) {
		err := rowmap.NewMissingPrimaryKeyError("User", "ID", int64(-1))
		assert.Equal(t, `rowmap: User: primary key "ID" is not positive (-1)`, err.Error())
	})

	t.Run("IsMissingPrimaryKey", func(t *testing.T) {
		err := rowmap.NewMissingPrimaryKeyError("User", "ID", nil)
		assert.True(t, errors.Is(err, rowmap.ErrMissingPrimaryKey))
		assert.True(t, rowmap.IsMissingPrimaryKey(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, rowmap.IsMissingPrimaryKey(rowmap.ErrAmbiguousResult))
		assert.False(t, rowmap.IsMissingPrimaryKey(nil))
	})
}

func TestAmbiguousResultError(t *testing.T) {
	err := rowmap.NewAmbiguousResultError("User", 2)
	assert.Equal(t, "rowmap: User: ambiguous result (got 2 rows, expected at most 1)", err.Error())
	assert.Equal(t, "rowmap: User: ambiguous result", rowmap.NewAmbiguousResultError("User", -1).Error())
	assert.True(t, rowmap.IsAmbiguousResult(err))
	assert.True(t, errors.Is(err, rowmap.ErrAmbiguousResult))
	assert.False(t, rowmap.IsAmbiguousResult(errors.New("other error")))
}

func TestUnexpectedMultiRowEffectError(t *testing.T) {
	err := rowmap.NewUnexpectedMultiRowEffectError("User", "update", 3)
	assert.Equal(t, "rowmap: update User affected 3 rows, expected at most 1", err.Error())
	assert.True(t, rowmap.IsUnexpectedMultiRowEffect(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, rowmap.IsUnexpectedMultiRowEffect(nil))
}

func TestEmptyEntityError(t *testing.T) {
	err := rowmap.NewEmptyEntityError("User", "insert")
	assert.Equal(t, "rowmap: insert User: nothing to insert", err.Error())
	assert.True(t, rowmap.IsEmptyEntity(err))
	assert.True(t, errors.Is(err, rowmap.ErrEmptyEntity))
}

func TestMalformedQueryError(t *testing.T) {
	err := rowmap.NewMalformedQueryError("%d unclosed parentheses", 2)
	assert.Equal(t, "rowmap: malformed query: 2 unclosed parentheses", err.Error())
	assert.True(t, rowmap.IsMalformedQuery(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, rowmap.IsMalformedQuery(rowmap.ErrStorage))
}

func TestStorageError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, rowmap.NewStorageError("load", "SELECT 1", nil))
	})

	t.Run("Error", func(t *testing.T) {
		err := rowmap.NewStorageError("load", "SELECT 1", errors.New("connection reset"))
		assert.Equal(t, "rowmap: load: connection reset (query: SELECT 1)", err.Error())
		err = rowmap.NewStorageError("begin", "", errors.New("connection reset"))
		assert.Equal(t, "rowmap: begin: connection reset", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'saoj' for key 'username'"}
		err := rowmap.NewStorageError("insert", "INSERT INTO users(username) VALUES(?)", fmt.Errorf("dialect/sql: exec: %w", cause))
		require.True(t, rowmap.IsStorageError(err))
		assert.True(t, errors.Is(err, rowmap.ErrStorage))

		var myErr *mysql.MySQLError
		require.True(t, errors.As(err, &myErr))
		assert.Equal(t, uint16(1062), myErr.Number)

		var se *rowmap.StorageError
		require.True(t, errors.As(err, &se))
		assert.True(t, se.IsUniqueViolation())
		assert.False(t, se.IsForeignKeyViolation())
		assert.False(t, se.IsCheckViolation())
		assert.True(t, rowmap.IsConstraintError(err))
	})

	t.Run("NotConstraint", func(t *testing.T) {
		err := rowmap.NewStorageError("load", "", errors.New("connection reset"))
		assert.False(t, rowmap.IsConstraintError(err))
		assert.False(t, rowmap.IsConstraintError(errors.New("UNIQUE constraint failed")))
	})
}
