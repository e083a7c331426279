package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	pkgerrors "github.com/SegflowJP/line-bot/pkg/errors"
)

// IsConnectionError 判断错误是否为连接级故障（后端不可达）
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, pkgerrors.ErrStorageUnavailable),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, gomysql.ErrInvalidConn),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgConnErr *pgconn.ConnectError
	return errors.As(err, &pgConnErr)
}

// IsRetryable 判断写操作是否可以原地重试：
// 唯一键冲突（并发首次插入）、锁等待、死锁、序列化失败、SQLite busy
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001", "40P01":
			return true
		}
		return false
	}

	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062, 1205, 1213:
			return true
		}
		return false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy ||
			liteErr.Code == sqlite3.ErrLocked ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
