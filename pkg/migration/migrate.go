// Package migration はSQLiteデータベースのマイグレーションを管理する。
// embed.FSからSQLファイルを読み込み、バージョン管理テーブルで適用状態を追跡する。
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strconv"
	"strings"
)

// migrationFile は1つのマイグレーションSQLファイルを表す。
type migrationFile struct {
	// version はファイル名先頭の連番。
	version int
	// name はファイル名から連番と拡張子を除いた説明部分。
	name string
	// path はfsys内のファイルパス。
	path string
}

// Run はembedされたマイグレーションファイルをバージョン順に適用する。
// 未適用のマイグレーションのみ実行し、適用済みのものはスキップする。
// ファイル名形式: 000001_description.up.sql
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("マイグレーション管理テーブルの作成に失敗: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return fmt.Errorf("適用済みバージョンの取得に失敗: %w", err)
	}

	migrations, err := collect(fsys, dir)
	if err != nil {
		return fmt.Errorf("マイグレーションファイルの収集に失敗: %w", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := apply(ctx, db, fsys, m); err != nil {
			return fmt.Errorf("マイグレーション %06d の適用に失敗: %w", m.version, err)
		}
		log.Printf("[Migration] マイグレーション %06d_%s を適用しました", m.version, m.name)
	}

	return nil
}

// appliedVersions は適用済みのマイグレーションバージョンを取得する。
func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// collect はディレクトリからup.sqlファイルを収集してバージョン順にソートする。
// 連番を持たないファイルは無視する。
func collect(fsys fs.FS, dir string) ([]migrationFile, error) {
	paths, err := fs.Glob(fsys, path.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, err
	}

	migrations := make([]migrationFile, 0, len(paths))
	for _, p := range paths {
		base := strings.TrimSuffix(path.Base(p), ".up.sql")
		numStr, name, found := strings.Cut(base, "_")
		if !found {
			continue
		}
		version, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}
		migrations = append(migrations, migrationFile{version: version, name: name, path: p})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

// apply は1つのマイグレーションをトランザクション内で適用し、バージョンを記録する。
func apply(ctx context.Context, db *sql.DB, fsys fs.FS, m migrationFile) error {
	content, err := fs.ReadFile(fsys, m.path)
	if err != nil {
		return fmt.Errorf("ファイル読み込みに失敗: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("SQL実行に失敗: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("バージョン記録に失敗: %w", err)
	}

	return tx.Commit()
}
