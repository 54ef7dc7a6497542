// Package warehouse talks to the Microsoft Fabric warehouse: opening the
// authenticated connection pool, resolving tenant view schemas, and executing
// generated queries.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/microsoft/go-mssqldb/azuread"

	"github.com/firmsight/firmsight/internal/config"
)

// Open builds the connection pool for the warehouse. The driver performs the
// Azure AD service-principal token exchange itself, so the access token rides
// on the connection and never appears in SQL.
func Open(ctx context.Context, cfg config.WarehouseConfig) (*sql.DB, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("warehouse server is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("warehouse database is required")
	}

	db, err := sql.Open(azuread.DriverName, buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}

	return db, nil
}

func buildDSN(cfg config.WarehouseConfig) string {
	port := cfg.Port
	if port <= 0 {
		port = 1433
	}
	connectTimeout := int(cfg.ConnectTimeout / time.Second)
	if connectTimeout <= 0 {
		connectTimeout = 30
	}

	query := url.Values{}
	query.Set("database", cfg.Database)
	query.Set("encrypt", "true")
	query.Set("TrustServerCertificate", "true")
	query.Set("dial timeout", strconv.Itoa(connectTimeout))
	query.Set("fedauth", "ActiveDirectoryServicePrincipal")
	query.Set("user id", cfg.ClientID+"@"+cfg.AADTenantID)
	query.Set("password", cfg.ClientSecret)

	u := url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(cfg.Server, strconv.Itoa(port)),
		RawQuery: query.Encode(),
	}
	return u.String()
}
