// API Gatewayサービスのエントリポイント。
// トークン検証とリクエストルーティングを担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線となる。
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/nao1215/campus/internal/gateway"
)

func main() {
	// ローカル開発用。ファイルが無ければ環境変数だけで動作する。
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := gateway.NewServer(port)
	if err != nil {
		log.Fatalf("Gatewayサーバーの初期化に失敗: %v", err)
	}

	log.Printf("Gatewayサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("Gatewayサービスの起動に失敗: %v", err)
	}
}
