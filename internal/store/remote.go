package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Change-notification topics. Any write against a table publishes its topic on
// the event bus; list caches subscribe and invalidate wholesale.
const (
	TopicProductsChanged    = "products.changed"
	TopicServicesChanged    = "services.changed"
	TopicSalesChanged       = "sales.changed"
	TopicExpensesChanged    = "expenses.changed"
	TopicQuotesChanged      = "quotes.changed"
	TopicFormationsChanged  = "formations.changed"
	TopicStudentsChanged    = "students.changed"
	TopicEnrollmentsChanged = "student_enrollments.changed"
	TopicSettingsChanged    = "sys_config.changed"
)

// Bus is the slice of the event bus the stores need.
type Bus interface {
	Publish(topic string, args ...interface{})
	Subscribe(topic string, fn interface{}) error
}

// RemoteRejected reports whether the data store accepted the connection but
// refused the operation: constraint violations and the like. These are
// surfaced to the caller; the optimistic mirror is not reverted.
func RemoteRejected(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated)
}

// RemoteUnavailable reports whether the remote store could not be reached at
// all. Reads degrade to the local mirror, writes stay local and unsynced.
func RemoteUnavailable(err error) bool {
	return err != nil && !RemoteRejected(err)
}
