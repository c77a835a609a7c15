package auth

import "embed"

// migrationsFS は認証サービスのマイグレーションSQLを埋め込む。
//
//go:embed migrations/*.sql
var migrationsFS embed.FS
