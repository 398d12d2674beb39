package utils

import (
	"strconv"
	"strings"
	"time"
)

// GenerateConnectionString собирает DSN для pgxpool.
// poolSize попадает в pool_max_conns, 0 оставляет значение pgxpool по умолчанию.
func GenerateConnectionString(
	host, user, password, dbName, sslMode string,
	port, poolSize int,
	timeout time.Duration,
) (string, error) {
	if host == "" {
		return "", ErrStorageEmptyHostName
	}
	if port <= 0 || port > 65535 {
		return "", ErrStorageInvalidPortNumber
	}
	if user == "" {
		return "", ErrStorageEmptyUsername
	}
	if password == "" {
		return "", ErrStorageEmptyPassword
	}
	if dbName == "" {
		return "", ErrStorageInvalidDatabaseName
	}
	switch sslMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return "", ErrStorageInvalidSslMode
	}
	if timeout < 0 {
		return "", ErrStorageInvalidTimeout
	}
	if poolSize < 0 {
		return "", ErrStorageInvalidPoolSize
	}

	parts := []string{
		"host=" + host,
		"port=" + strconv.Itoa(port),
		"user=" + user,
		"password=" + quote(password),
		"dbname=" + dbName,
		"sslmode=" + sslMode,
		"application_name=struct-commerce-sync",
	}
	if timeout > 0 {
		parts = append(parts, "connect_timeout="+strconv.Itoa(int(timeout.Seconds())))
	}
	if poolSize > 0 {
		parts = append(parts, "pool_max_conns="+strconv.Itoa(poolSize))
	}

	return strings.Join(parts, " "), nil
}

// quote экранирует значение с пробелами или кавычками по правилам libpq
func quote(value string) string {
	if !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}
