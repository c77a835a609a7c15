// 認証サービスのエントリポイント。
// ユーザー登録・ログイン・トークン発行を担当する。
// Gatewayの内側に配置され、外部から直接アクセスされることはない。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nao1215/campus/internal/auth"
)

func main() {
	// ローカル開発用。ファイルが無ければ環境変数だけで動作する。
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	server, err := auth.NewServer(port)
	if err != nil {
		log.Fatalf("認証サーバーの初期化に失敗: %v", err)
	}

	log.Printf("認証サービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("認証サービスの起動に失敗: %v", err)
	}
}
