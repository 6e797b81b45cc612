package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQLErrorClassifier implements edseed.ErrorClassifier for pgx errors.
type PostgreSQLErrorClassifier struct{}

func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient reports whether err is worth another attempt: a retryable
// SQLSTATE, a network failure, or a connection-level message from pgconn.
// Constraint violations and other data errors are fatal.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return c.isTransientPgError(pgErr)
	}

	return c.isNetworkError(err) || c.isConnectionMessage(err)
}

// Retryable SQLSTATE classes: 08 connection exception, 53 insufficient
// resources, 57 operator intervention. Plus serialization failure,
// deadlock and lock-not-available, which a repeated upsert can clear.
var (
	transientClasses = []string{"08", "53", "57"}
	transientCodes   = map[string]bool{
		"40001": true,
		"40P01": true,
		"55P03": true,
	}
)

func (c *PostgreSQLErrorClassifier) isTransientPgError(pgErr *pgconn.PgError) bool {
	for _, class := range transientClasses {
		if strings.HasPrefix(pgErr.Code, class) {
			return true
		}
	}
	return transientCodes[pgErr.Code]
}

var retryableErrnos = []error{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ENETUNREACH,
	syscall.EHOSTUNREACH,
}

func (c *PostgreSQLErrorClassifier) isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	if opErr.Timeout() {
		return true
	}
	for _, errno := range retryableErrnos {
		if errors.Is(opErr.Err, errno) {
			return true
		}
	}
	return false
}

var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"connection pool exhausted",
}

func (c *PostgreSQLErrorClassifier) isConnectionMessage(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessages {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
