package order

// SyncRequest — тело POST /orders/sync: произвольная смесь заказов
// с серверными id и без них.
type SyncRequest struct {
	Orders []Order `json:"orders"`
}
