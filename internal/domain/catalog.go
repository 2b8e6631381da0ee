package domain

import "time"

// Service — услуга из каталога прачечной (стирка, химчистка, глажка).
// Управление каталогом и ценами — забота админки; ядро видит только снимки.
type Service struct {
	ID            string
	CategoryID    string
	Name          string
	PriceCentavos int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PaymentMethod — способ оплаты (наличные, GCash, карта).
type PaymentMethod struct {
	ID   string
	Name string
}
