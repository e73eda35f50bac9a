package models

// Update types recorded when the flags of a transaction change.
const (
	UpdateGoodsDelivered     = "goods_delivered"
	UpdateGoodsNotDelivered  = "goods_not_delivered"
	UpdatePaymentReceived    = "payment_received"
	UpdatePaymentNotReceived = "payment_not_received"
)

// TransactionUpdate is an audit entry on a transaction.
type TransactionUpdate struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	UpdateType    string `json:"update_type"`
	Description   string `json:"description,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// NewGoodsUpdate records a change of the goods-delivered flag.
func NewGoodsUpdate(transactionID string, delivered bool) TransactionUpdate {
	if delivered {
		return TransactionUpdate{TransactionID: transactionID, UpdateType: UpdateGoodsDelivered, Description: "کالا تحویل داده شد"}
	}
	return TransactionUpdate{TransactionID: transactionID, UpdateType: UpdateGoodsNotDelivered, Description: "تحویل کالا لغو شد"}
}

// NewPaymentUpdate records a change of the payment-received flag.
func NewPaymentUpdate(transactionID string, received bool) TransactionUpdate {
	if received {
		return TransactionUpdate{TransactionID: transactionID, UpdateType: UpdatePaymentReceived, Description: "پول دریافت شد"}
	}
	return TransactionUpdate{TransactionID: transactionID, UpdateType: UpdatePaymentNotReceived, Description: "دریافت پول لغو شد"}
}
