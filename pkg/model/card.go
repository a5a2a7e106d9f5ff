package model

// CardRecord は認識済みカードのジャーナルレコード。
// Valkeyキー: eac:card:{Key}
// TTL: なし（カード取り外し時に削除）
type CardRecord struct {
	Key       string `redis:"key"`        // (context, ifd, slot) から導出したキー
	Context   string `redis:"context"`    // コンテキストハンドル（16進）
	IFDName   string `redis:"ifd_name"`   // 端末（リーダー）名
	SlotIndex int    `redis:"slot_index"` // スロット番号
	CardType  string `redis:"card_type"`  // カード種別URI
	AddedAt   int64  `redis:"added_at"`   // 認識時刻（Unix秒）
}
