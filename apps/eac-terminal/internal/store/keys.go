package store

// Valkeyキープレフィックス
const (
	KeyPrefixSession = "eac:sess:"     // セッションジャーナル
	KeyPrefixCard    = "eac:card:"     // 認識済みカード
	KeyCardIndex     = "eac:idx:cards" // カードキーの追加順インデックス（ZSET）
)
