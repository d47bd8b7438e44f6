package database

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
)

// Domain errors returned by queries
var (
	ErrNotFound          = errors.New("not found")
	ErrAccountInactive   = errors.New("account is inactive or does not exist")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSameAccount       = errors.New("cannot transfer funds to the same account")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// MySQL server error numbers that mean the connection itself is unusable
const (
	erAccessDenied   = 1045
	erBadDB          = 1049
	erDBAccessDenied = 1044
)

// IsConnectionError reports whether err means the store is unreachable or
// rejected our credentials, as opposed to a failed statement.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case erAccessDenied, erBadDB, erDBAccessDenied:
			return true
		}
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
