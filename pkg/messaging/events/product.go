package events

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/abgdnv/inventory/pkg/messaging"
	"go.opentelemetry.io/otel/propagation"
)

// ProductEvent is published whenever a product is created, updated or deleted.
// Carrier holds the trace context of the request that caused it.
type ProductEvent struct {
	subject    string
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	ProductID  int64                  `json:"id"`
	Barcode    string                 `json:"codigoBarras"`
	Name       string                 `json:"nombre"`
	Price      float64                `json:"precio"`
	Stock      int                    `json:"stock"`
	Category   string                 `json:"categoria"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func NewProductCreated(e ProductEvent) ProductEvent {
	e.subject = messaging.ProductsCreatedSubject
	return e
}

func NewProductUpdated(e ProductEvent) ProductEvent {
	e.subject = messaging.ProductsUpdatedSubject
	return e
}

func NewProductDeleted(e ProductEvent) ProductEvent {
	e.subject = messaging.ProductsDeletedSubject
	return e
}

func (e ProductEvent) Subject() string {
	return e.subject
}

// MessageID is stable for the same change, so a retried publish is dropped by the stream.
func (e ProductEvent) MessageID() string {
	return e.subject + ":" + strconv.FormatInt(e.ProductID, 10) + ":" + strconv.FormatInt(e.OccurredAt.UnixNano(), 10)
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
